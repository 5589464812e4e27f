package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/medihelp-api/internal/config"
)

type recordingSender struct {
	messages []*gomail.Message
	err      error
}

func (r *recordingSender) DialAndSend(m ...*gomail.Message) error {
	r.messages = append(r.messages, m...)
	return r.err
}

func TestSendFamilyNotice(t *testing.T) {
	sender := &recordingSender{}
	svc := NewSMTPService(sender, "noreply@medihelp.test")

	require.NoError(t, svc.SendFamilyNotice(context.Background(), "mom@example.com", "Alice", "Daughter"))
	require.Len(t, sender.messages, 1)

	m := sender.messages[0]
	assert.Equal(t, []string{"mom@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"noreply@medihelp.test"}, m.GetHeader("From"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Alice added you to their family list")
}

func TestSendCustomWrapsSenderError(t *testing.T) {
	svc := NewSMTPService(&recordingSender{err: errors.New("dial tcp: refused")}, "noreply@medihelp.test")
	err := svc.SendCustom(context.Background(), "x@example.com", "s", "b")
	assert.ErrorContains(t, err, "failed to send email to x@example.com")
}

func TestNewServiceWithoutHostIsNop(t *testing.T) {
	svc := NewService(config.SMTPConfig{})
	assert.IsType(t, Nop{}, svc)
	assert.NoError(t, svc.SendWelcome(context.Background(), "a@example.com", "A"))
}
