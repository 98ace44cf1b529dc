package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/m3rciful/goalbot/storage"
)

type codeStoreStub struct {
	inUseLeft int
	assigned  []string
	checked   []string
}

func (s *codeStoreStub) GetOrCreateByChatID(context.Context, int64) (*storage.TgUser, bool, error) {
	return nil, false, nil
}

func (s *codeStoreStub) UpdateUsername(context.Context, int64, string) error { return nil }

func (s *codeStoreStub) AssignVerificationCode(_ context.Context, _ int64, code string) error {
	s.assigned = append(s.assigned, code)
	return nil
}

func (s *codeStoreStub) CodeInUse(_ context.Context, code string) (bool, error) {
	s.checked = append(s.checked, code)
	if s.inUseLeft > 0 {
		s.inUseLeft--
		return true, nil
	}
	return false, nil
}

func TestGenerateCodeShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != codeLength {
			t.Fatalf("len(%q) = %d, expected %d", code, len(code), codeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("codes should not all collide")
	}
}

func TestIssueRegeneratesOnCollision(t *testing.T) {
	store := &codeStoreStub{inUseLeft: 2}
	issuer := NewCodeIssuer(store)

	code, err := issuer.Issue(context.Background(), 111)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(store.checked) != 3 {
		t.Fatalf("uniqueness checks = %d, expected 3", len(store.checked))
	}
	if len(store.assigned) != 1 || store.assigned[0] != code {
		t.Fatalf("assigned = %v, expected exactly [%s]", store.assigned, code)
	}
}

func TestIssueGivesUpWhenExhausted(t *testing.T) {
	store := &codeStoreStub{inUseLeft: codeMaxAttempts}
	issuer := NewCodeIssuer(store)

	if _, err := issuer.Issue(context.Background(), 111); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if len(store.assigned) != 0 {
		t.Fatalf("assigned = %v, expected none", store.assigned)
	}
}
