package probe

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/osint-enrich/internal/model"
)

type fakeResolver struct {
	mx       []*net.MX
	mxErr    error
	txt      []string
	txtErr   error
	mxCalls  int
	txtCalls int
}

func (f *fakeResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	f.mxCalls++
	return f.mx, f.mxErr
}

func (f *fakeResolver) LookupTXT(ctx context.Context, domain string) ([]string, error) {
	f.txtCalls++
	return f.txt, f.txtErr
}

func TestEmailProbe_Valid(t *testing.T) {
	r := &fakeResolver{mx: []*net.MX{{Host: "mx1.good-domain.test.", Pref: 10}}}
	p := NewEmailProbe(r)

	check := p.Check(context.Background(), "a@good-domain.test")
	assert.True(t, check.Valid)
	assert.True(t, check.Outcome.OK())
	assert.Equal(t, []string{"mx1.good-domain.test."}, check.MXHosts)
	assert.Equal(t, 1, r.mxCalls)
}

func TestEmailProbe_MalformedSkipsNetwork(t *testing.T) {
	r := &fakeResolver{}
	p := NewEmailProbe(r)

	for _, email := range []string{"no-at-sign", "", "spaces in@local.test", "a@@b.test"} {
		check := p.Check(context.Background(), email)
		assert.False(t, check.Valid, "email %q should be invalid", email)
		assert.Equal(t, model.OutcomeMalformed, check.Outcome.Status, "email %q", email)
		assert.False(t, check.Outcome.OK(), "email %q", email)
	}
	assert.Equal(t, 0, r.mxCalls, "malformed emails must not trigger DNS lookups")
}

func TestEmailProbe_MXFailure(t *testing.T) {
	r := &fakeResolver{mxErr: errors.New("NXDOMAIN")}
	p := NewEmailProbe(r)

	check := p.Check(context.Background(), "a@nonexistent.test")
	assert.False(t, check.Valid)
	assert.Equal(t, model.OutcomeUnavailable, check.Outcome.Status)
	assert.Contains(t, check.Outcome.Detail, "NXDOMAIN")
}

func TestEmailProbe_MXTimeout(t *testing.T) {
	r := &fakeResolver{mxErr: context.DeadlineExceeded}
	p := NewEmailProbe(r)

	check := p.Check(context.Background(), "a@slow.test")
	assert.False(t, check.Valid)
	assert.Equal(t, model.OutcomeTimeout, check.Outcome.Status)
}

func TestEmailProbe_EmptyMXSet(t *testing.T) {
	r := &fakeResolver{}
	p := NewEmailProbe(r)

	check := p.Check(context.Background(), "a@no-mail.test")
	assert.False(t, check.Valid)
	assert.Equal(t, model.OutcomeUnavailable, check.Outcome.Status)
}
