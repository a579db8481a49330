// -----------------------------------------------------------------------------
// Queue Interface
// -----------------------------------------------------------------------------
// Arka plan işleri (satın alma makbuzu e-postası gibi) için iş kuyruğu.
// İstek yolunda yapılmaması gereken yavaş işler buraya bırakılır; worker
// bunları ayrı goroutine'lerde işler ve başarısız olanları tekrar dener.
//
// Driver'lar: Redis (çok instance), Memory (tek process / test)
// -----------------------------------------------------------------------------

package queue

import (
	"context"
	"time"
)

// Queue, tüm queue driver'ların implement etmesi gereken interface.
type Queue interface {
	// Push, job'ı hemen işlenebilir olarak kuyruğa ekler.
	Push(ctx context.Context, queue string, job *Job) error

	// Later, job'ı delay sonrası işlenebilir olacak şekilde ekler.
	Later(ctx context.Context, queue string, job *Job, delay time.Duration) error

	// Pop, işlenebilir bir job çeker. Kuyruk boşsa (nil, nil) döner.
	Pop(ctx context.Context, queue string) (*Job, error)

	// Fail, deneme hakkı biten job'ı failed listesine taşır.
	Fail(ctx context.Context, queue string, job *Job, cause error) error

	// Size, bekleyen (hazır + gecikmeli) job sayısını döndürür.
	Size(ctx context.Context, queue string) (int64, error)
}
