package credential

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QREncoder, bilet token'ını kapıda taranacak PNG görüntüsüne çevirir.
type QREncoder interface {
	Encode(token string) ([]byte, error)
}

// PNGEncoder, go-qrcode tabanlı varsayılan QREncoder'dır.
type PNGEncoder struct {
	Size  int
	Level qrcode.RecoveryLevel
}

// NewPNGEncoder, 256px ve orta hata düzeltme seviyeli bir encoder döndürür.
func NewPNGEncoder() *PNGEncoder {
	return &PNGEncoder{Size: 256, Level: qrcode.Medium}
}

func (e *PNGEncoder) Encode(token string) ([]byte, error) {
	if token == "" {
		return nil, fmt.Errorf("credential: empty token")
	}
	png, err := qrcode.Encode(token, e.Level, e.Size)
	if err != nil {
		return nil, fmt.Errorf("credential: qr encode: %w", err)
	}
	return png, nil
}
