package events

// Listener, olayları işleyen arayüz.
type Listener interface {
	Handle(event Event) error
}

// ListenerFunc, bir fonksiyonu Listener'a çevirir.
//
//	dispatcher.Listen(events.EventOrderPurchased, events.ListenerFunc(func(e events.Event) error {
//	    return nil
//	}))
type ListenerFunc func(Event) error

func (f ListenerFunc) Handle(event Event) error {
	return f(event)
}

// Logger, dispatcher'ın kullandığı minimal logger arayüzü. *log.Logger
// bu arayüzü sağlar.
type Logger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}
