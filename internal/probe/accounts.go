package probe

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/osint-enrich/internal/model"
)

// accountFoundMarker prefixes each confirmed-account line in the
// discovery tool's output.
const accountFoundMarker = "[+]"

// Runner abstracts external executable invocation so tests can stub the
// discovery tool.
type Runner interface {
	Run(ctx context.Context, path string, args ...string) (string, error)
}

type execRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() Runner { return execRunner{} }

func (execRunner) Run(ctx context.Context, path string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", eris.Wrapf(err, "accounts: %s failed: %s", path, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// ResolveTool resolves the account-discovery executable once at startup.
// An explicitly configured path must resolve or the error is surfaced as a
// startup diagnostic; otherwise the candidate paths are tried in order and
// the first found wins.
func ResolveTool(explicit string, candidates []string) (string, error) {
	if explicit != "" {
		path, err := exec.LookPath(explicit)
		if err != nil {
			return "", eris.Wrapf(err, "accounts: configured tool %q not found", explicit)
		}
		return path, nil
	}
	for _, cand := range candidates {
		if path, err := exec.LookPath(cand); err == nil {
			return path, nil
		}
	}
	return "", eris.Errorf("accounts: discovery tool not found in any of %v", candidates)
}

// AccountProbe runs the external account-discovery executable against an
// email address. A zero-value path means the tool was never resolved and
// every lookup reports unavailable.
type AccountProbe struct {
	path    string
	timeout time.Duration
	runner  Runner
}

// NewAccountProbe creates an AccountProbe. path may be empty when the tool
// is not installed; runner defaults to os/exec when nil.
func NewAccountProbe(path string, timeout time.Duration, runner Runner) *AccountProbe {
	if runner == nil {
		runner = NewExecRunner()
	}
	return &AccountProbe{path: path, timeout: timeout, runner: runner}
}

// Discover invokes the tool with the email and parses its output. Each
// line starting with the found marker yields one confirmed account name.
// Timeouts and a missing tool degrade to a zero-credit outcome, never an
// error for the lead.
func (p *AccountProbe) Discover(ctx context.Context, email string) model.AccountDiscovery {
	if p.path == "" {
		return model.AccountDiscovery{Outcome: model.Unavailable("account-discovery tool not installed")}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.runner.Run(ctx, p.path, email)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			zap.L().Debug("account probe: timeout", zap.String("email", email))
			return model.AccountDiscovery{Outcome: model.TimedOut("account discovery exceeded " + p.timeout.String())}
		}
		zap.L().Debug("account probe: tool failed",
			zap.String("email", email),
			zap.Error(err),
		)
		return model.AccountDiscovery{Outcome: model.Unavailable(err.Error())}
	}

	return model.AccountDiscovery{
		Outcome:  model.Succeeded(),
		Accounts: parseAccounts(out),
	}
}

func parseAccounts(out string) []string {
	var accounts []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, accountFoundMarker) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) > 1 {
			accounts = append(accounts, fields[1])
		} else {
			accounts = append(accounts, unknownField)
		}
	}
	return accounts
}
