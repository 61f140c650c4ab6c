// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notify reports a missed deadline (spec §7: recoverable, not
// fatal) out of process. NopNotifier is the default; SlackNotifier posts
// to a channel, retrying transient failures via internal/backoff.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/slack-go/slack"

	"github.com/dagu-org/dagsim/internal/backoff"
	"github.com/dagu-org/dagsim/internal/logger"
)

// Notifier is told about a deadline miss once the scheduler kernel detects
// one and ends the run.
type Notifier interface {
	DeadlineMissed(ctx context.Context, dagName string, dagID int, jobID int32, responseTime, relativeDeadline int32) error
}

// NopNotifier discards every notification. It is the default when no
// notifier is configured.
type NopNotifier struct{}

func (NopNotifier) DeadlineMissed(context.Context, string, int, int32, int32, int32) error {
	return nil
}

// SlackNotifier posts a message to a Slack channel, retrying with
// exponential backoff up to its policy's limits.
type SlackNotifier struct {
	client  *slack.Client
	channel string
	log     logger.Logger
}

// NewSlackNotifier returns a SlackNotifier authenticated with token,
// posting to channel. Extra slack.Options (e.g. slack.OptionAPIURL) pass
// straight through to the underlying client, mainly so tests can point it
// at a fake server.
func NewSlackNotifier(token, channel string, log logger.Logger, opts ...slack.Option) *SlackNotifier {
	if log == nil {
		log = logger.Default
	}
	return &SlackNotifier{client: slack.New(token, opts...), channel: channel, log: log}
}

// DeadlineMissed posts the miss to Slack, retrying transient errors.
func (s *SlackNotifier) DeadlineMissed(ctx context.Context, dagName string, dagID int, jobID, responseTime, relativeDeadline int32) error {
	msg := fmt.Sprintf(
		"deadline missed: dag=%q (id=%d) job=%d response_time=%d relative_deadline=%d",
		dagName, dagID, jobID, responseTime, relativeDeadline,
	)

	policy := backoff.NewExponentialBackoffPolicy(500 * time.Millisecond)
	policy.MaxRetries = 5
	retrier := backoff.NewRetrier(policy)

	var lastErr error
	for {
		_, _, err := s.client.PostMessageContext(ctx, s.channel, slack.MsgOptionText(msg, false))
		if err == nil {
			return nil
		}
		lastErr = err
		s.log.Warnf("notify: slack post failed, retrying: %v", err)
		if rerr := retrier.Next(ctx, err); rerr != nil {
			return fmt.Errorf("notify: giving up after repeated failures: %w (last: %v)", rerr, lastErr)
		}
	}
}
