package mail

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestVerificationEmail(t *testing.T) {
	msg, err := VerificationEmail("writer@example.com", "Amina", "https://goldenpens.app/verify?token=abc")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if msg.To != "writer@example.com" {
		t.Errorf("to = %q", msg.To)
	}
	if !strings.Contains(msg.HTML, "Amina") {
		t.Error("HTML should greet the user by name")
	}
	if !strings.Contains(msg.HTML, "https://goldenpens.app/verify?token=abc") {
		t.Error("HTML should contain the verification link")
	}
	if !strings.Contains(msg.Text, "https://goldenpens.app/verify?token=abc") {
		t.Error("text alternative should contain the verification link")
	}
	if strings.Contains(msg.Text, "<p>") {
		t.Error("text alternative should not contain HTML")
	}
}

func TestResetEmailEscapesName(t *testing.T) {
	msg, err := ResetEmail("writer@example.com", `<script>alert(1)</script>`, "https://goldenpens.app/reset")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Error("name must be escaped in HTML")
	}
}

func TestLogMailerSend(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	m := NewLogMailer(logger)

	msg, err := EmailChangeEmail("writer@example.com", "Amina", "https://goldenpens.app/confirm")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := m.Send(context.Background(), msg); err != nil {
		t.Errorf("send: %v", err)
	}
}

func TestBuildMIME(t *testing.T) {
	msg := &Message{
		To:      "writer@example.com",
		Subject: "Hello",
		HTML:    "<p>Hi</p>",
		Text:    "Hi",
	}
	body, err := buildMIME("no-reply@goldenpens.app", msg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	s := string(body)
	for _, want := range []string{
		"From: no-reply@goldenpens.app",
		"To: writer@example.com",
		"Subject: Hello",
		"multipart/alternative",
		"text/plain",
		"text/html",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("MIME body missing %q", want)
		}
	}
}
