package tele

import (
	"context"

	"github.com/temoto/spotlcd/log2"
)

// Tele transport contract:
// - Init fails only with invalid config, ignores network errors
// - application may start without network available
// - Publish returns when broker acknowledged message or ctx is done
type Transporter interface {
	Init(ctx context.Context, log *log2.Log, c Config) error
	Publish(ctx context.Context, topic string, payload []byte) error
	Close()
}
