package telegram

import (
	"context"
	"errors"
	"net"
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "deadline", err: context.DeadlineExceeded, want: "timeout"},
		{name: "dns", err: &net.DNSError{Err: "no such host"}, want: "dns"},
		{name: "dial", err: &net.OpError{Op: "dial", Err: errors.New("refused")}, want: "dial"},
		{name: "api 502", err: &tele.Error{Code: 502}, want: "http_5xx"},
		{name: "api 401", err: &tele.Error{Code: 401}, want: "http_4xx"},
		{name: "flood", err: tele.FloodError{RetryAfter: 5}, want: "http_4xx"},
		{name: "trailing code", err: errors.New("telegram: Bad Request (400)"), want: "http_4xx"},
		{name: "plain", err: errors.New("something odd"), want: "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyError(tc.err); got != tc.want {
				t.Fatalf("ClassifyError(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot12345:AAeeFFggHH/getUpdates": EOF`)
	got := SanitizeErrorMessage(err)
	if got != `Post "https://api.telegram.org/bot<redacted>/getUpdates": EOF` {
		t.Fatalf("sanitized = %q", got)
	}
	if SanitizeErrorMessage(nil) != "" {
		t.Fatal("nil error should sanitize to empty string")
	}
}
