package graph

import (
	"context"
	"strings"
	"time"
)

// RetryPolicy defines how node failures are retried.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// BackoffStrategy selects the delay progression between attempts.
	BackoffStrategy BackoffStrategy

	// BaseDelay is the first retry delay. Zero means one second.
	BaseDelay time.Duration

	// RetryableErrors are substrings matched against the error text. An
	// empty list retries every error.
	RetryableErrors []string
}

// BackoffStrategy defines different backoff strategies.
type BackoffStrategy int

const (
	FixedBackoff BackoffStrategy = iota
	ExponentialBackoff
	LinearBackoff
)

// runWithRetry executes a node with retry logic based on the graph's policy.
func (r *Runnable[S]) runWithRetry(ctx context.Context, node Node[S], state S) (nodeResult[S], error) {
	var lastErr error

	maxAttempts := 1
	if r.graph.retryPolicy != nil {
		maxAttempts = r.graph.retryPolicy.MaxRetries + 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		res, err := r.runNode(ctx, node, state)
		if err == nil {
			return res, nil
		}

		// Interrupts are control flow, never retried.
		if _, ok := err.(*NodeInterrupt); ok {
			return nodeResult[S]{}, err
		}

		lastErr = err

		if r.graph.retryPolicy != nil && attempt < maxAttempts-1 && r.isRetryable(err) {
			delay := r.backoffDelay(attempt)
			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return nodeResult[S]{}, ctx.Err()
				}
			}
			continue
		}
		break
	}

	return nodeResult[S]{}, lastErr
}

func (r *Runnable[S]) runNode(ctx context.Context, node Node[S], state S) (nodeResult[S], error) {
	if node.CommandFunc != nil {
		cmd, err := node.CommandFunc(ctx, state)
		if err != nil {
			return nodeResult[S]{}, err
		}
		return nodeResult[S]{cmd: cmd, hasCmd: true}, nil
	}

	update, err := node.Function(ctx, state)
	if err != nil {
		return nodeResult[S]{}, err
	}
	return nodeResult[S]{update: update}, nil
}

func (r *Runnable[S]) isRetryable(err error) bool {
	policy := r.graph.retryPolicy
	if policy == nil {
		return false
	}
	if len(policy.RetryableErrors) == 0 {
		return true
	}

	text := err.Error()
	for _, pattern := range policy.RetryableErrors {
		if strings.Contains(text, pattern) {
			return true
		}
	}
	return false
}

func (r *Runnable[S]) backoffDelay(attempt int) time.Duration {
	policy := r.graph.retryPolicy
	if policy == nil {
		return 0
	}

	base := policy.BaseDelay
	if base <= 0 {
		base = time.Second
	}

	switch policy.BackoffStrategy {
	case ExponentialBackoff:
		return base * time.Duration(1<<attempt)
	case LinearBackoff:
		return base * time.Duration(attempt+1)
	default:
		return base
	}
}
