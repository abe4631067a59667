package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/osint-enrich/internal/model"
)

type fakeRunner struct {
	out      string
	err      error
	lastPath string
	lastArgs []string
}

func (f *fakeRunner) Run(ctx context.Context, path string, args ...string) (string, error) {
	f.lastPath = path
	f.lastArgs = args
	return f.out, f.err
}

func TestAccountProbe_ParsesFoundLines(t *testing.T) {
	out := `
[+] github.com
[x] twitter.com
[+] spotify.com
[-] instagram.com
[+] discord.com
`
	r := &fakeRunner{out: out}
	p := NewAccountProbe("/usr/bin/holehe", 30*time.Second, r)

	disc := p.Discover(context.Background(), "a@good-domain.test")
	require.True(t, disc.Outcome.OK())
	assert.Equal(t, []string{"github.com", "spotify.com", "discord.com"}, disc.Accounts)
	assert.Equal(t, "/usr/bin/holehe", r.lastPath)
	assert.Equal(t, []string{"a@good-domain.test"}, r.lastArgs)
}

func TestAccountProbe_MarkerOnlyLine(t *testing.T) {
	r := &fakeRunner{out: "[+]\n[+] github.com\n"}
	p := NewAccountProbe("holehe", 30*time.Second, r)

	disc := p.Discover(context.Background(), "a@b.test")
	assert.Equal(t, []string{"Unknown", "github.com"}, disc.Accounts)
}

func TestAccountProbe_NoAccounts(t *testing.T) {
	r := &fakeRunner{out: "[x] github.com\n[x] twitter.com\n"}
	p := NewAccountProbe("holehe", 30*time.Second, r)

	disc := p.Discover(context.Background(), "a@b.test")
	assert.True(t, disc.Outcome.OK())
	assert.Empty(t, disc.Accounts)
}

func TestAccountProbe_ToolNotInstalled(t *testing.T) {
	p := NewAccountProbe("", 30*time.Second, &fakeRunner{})

	disc := p.Discover(context.Background(), "a@b.test")
	assert.Equal(t, model.OutcomeUnavailable, disc.Outcome.Status)
	assert.Contains(t, disc.Outcome.Detail, "not installed")
}

func TestAccountProbe_Timeout(t *testing.T) {
	r := &fakeRunner{err: context.DeadlineExceeded}
	p := NewAccountProbe("holehe", 30*time.Second, r)

	disc := p.Discover(context.Background(), "a@b.test")
	assert.Equal(t, model.OutcomeTimeout, disc.Outcome.Status)
}

func TestAccountProbe_ToolFailure(t *testing.T) {
	r := &fakeRunner{err: errors.New("exit status 1")}
	p := NewAccountProbe("holehe", 30*time.Second, r)

	disc := p.Discover(context.Background(), "a@b.test")
	assert.Equal(t, model.OutcomeUnavailable, disc.Outcome.Status)
	assert.Empty(t, disc.Accounts)
}

func TestResolveTool_ExplicitMissing(t *testing.T) {
	_, err := ResolveTool("/nonexistent/path/to/tool", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestResolveTool_NoCandidates(t *testing.T) {
	_, err := ResolveTool("", []string{"/no/such/bin-a", "/no/such/bin-b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discovery tool not found")
}

func TestResolveTool_CandidateFound(t *testing.T) {
	// "sh" exists on any POSIX system; it stands in for the real tool.
	path, err := ResolveTool("", []string{"/no/such/bin", "sh"})
	require.NoError(t, err)
	assert.NotEmpty(t, path)
}
