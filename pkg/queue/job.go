package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxAttempts, MaxAttempts verilmemiş job'lar için deneme sayısı.
const DefaultMaxAttempts = 3

// Job, kuyrukta saklanan iş zarfıdır. Type, worker'da kayıtlı handler'ı
// seçer; Payload handler'a özgü JSON veridir.
type Job struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	CreatedAt   time.Time       `json:"created_at"`
	AvailableAt time.Time       `json:"available_at"`
}

// NewJob, payload'ı JSON'a çevirip yeni bir job oluşturur.
//
//	job, err := queue.NewJob("mail.purchase_receipt", receipt, 5)
func NewJob(jobType string, payload any, maxAttempts int) (*Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("job payload encode edilemedi: %w", err)
	}
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Job{
		ID:          uuid.NewString(),
		Type:        jobType,
		Payload:     data,
		MaxAttempts: maxAttempts,
	}, nil
}

// Decode, payload'ı dst'ye çözer.
func (j *Job) Decode(dst any) error {
	if err := json.Unmarshal(j.Payload, dst); err != nil {
		return fmt.Errorf("job %s payload decode edilemedi: %w", j.ID, err)
	}
	return nil
}

// Exhausted, deneme hakkının bitip bitmediğini söyler.
func (j *Job) Exhausted() bool {
	limit := j.MaxAttempts
	if limit < 1 {
		limit = DefaultMaxAttempts
	}
	return j.Attempts >= limit
}

// FailedJob, failed listesindeki kayıttır.
type FailedJob struct {
	Job      *Job      `json:"job"`
	Queue    string    `json:"queue"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}
