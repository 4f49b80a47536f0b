package search

import (
	"context"
	"time"
)

// StubVideoDispatcher stands in for the video endpoint until the real
// contract lands: it answers every request with the same canned payload
// after a fixed delay.
type StubVideoDispatcher struct {
	Delay time.Duration
}

// Dispatch implements Dispatcher.
func (d StubVideoDispatcher) Dispatch(ctx context.Context, req Request) Response {
	delay := d.Delay
	if delay <= 0 {
		delay = 1500 * time.Millisecond
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return Errorf(transportFailureMessage)
	case <-timer.C:
	}

	return Response{
		Kind: ResponseVideo,
		Video: &VideoContext{
			Title:  "Full interview: the story behind the viral clip",
			Source: "YouTube",
			URL:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			Matches: []VideoMatch{
				{Time: "02:14", Context: "The circulating clip begins here, mid-answer."},
				{Time: "05:47", Context: "The full question that prompted the quoted line."},
			},
		},
	}
}
