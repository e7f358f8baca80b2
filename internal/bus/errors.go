package bus

import (
	"errors"

	"github.com/vivocha/vubsub/internal/namespace"
)

var (
	// ErrLogUnavailable reports that a namespace log could not be reached or
	// bootstrapped even after the second attempt.
	ErrLogUnavailable = namespace.ErrLogUnavailable

	// ErrInitFailed reports that a subscription could not complete its
	// initialization; the subscription is closed and must be re-created.
	ErrInitFailed = errors.New("bus: subscription initialization failed")

	// ErrPublishFailed reports that an append could not be acknowledged. The
	// message may or may not be durable; the caller decides whether to retry.
	ErrPublishFailed = errors.New("bus: publish failed")

	// ErrRegistrationFailed reports that a client could not be registered.
	ErrRegistrationFailed = errors.New("bus: client registration failed")

	// ErrUnknownClient reports a lookup for a client id this process never
	// registered or has already deregistered.
	ErrUnknownClient = errors.New("bus: unknown client")

	errClientClosed = errors.New("bus: client closed")
)
