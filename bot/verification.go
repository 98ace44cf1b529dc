package bot

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"

	"github.com/m3rciful/goalbot/core/logger"
)

// codeAlphabet excludes glyphs that read ambiguously in chat clients
// (0/O, 1/I/l).
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz"

const (
	codeLength      = 8
	codeMaxAttempts = 5
)

// GenerateCode produces a random verification code of fixed length over the
// unambiguous alphabet.
func GenerateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// CodeIssuer hands out verification codes, regenerating on the unlikely
// collision with a code already pending for another chat.
type CodeIssuer struct {
	store TgUserStore
}

func NewCodeIssuer(store TgUserStore) *CodeIssuer {
	return &CodeIssuer{store: store}
}

// Issue generates a unique code, stores it for the chat, and returns it.
// Every call replaces whatever code the chat had before.
func (i *CodeIssuer) Issue(ctx context.Context, chatID int64) (string, error) {
	for attempt := 1; attempt <= codeMaxAttempts; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return "", err
		}

		inUse, err := i.store.CodeInUse(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check verification code: %w", err)
		}
		if inUse {
			logger.BOT.Warn("verification code collision",
				slog.String("event", "verify.collision"),
				slog.Int64("chat_id", chatID),
				slog.Int("attempts", attempt),
			)
			continue
		}

		if err := i.store.AssignVerificationCode(ctx, chatID, code); err != nil {
			return "", fmt.Errorf("assign verification code: %w", err)
		}
		return code, nil
	}
	return "", fmt.Errorf("verification code space exhausted after %d attempts", codeMaxAttempts)
}
