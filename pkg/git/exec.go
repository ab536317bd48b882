package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type execRunner struct {
	secrets []string
}

// Run executes name with args in dir. Secrets are masked in returned output
// and errors.
func (r execRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	output := r.mask(strings.TrimSpace(string(out)))
	if err != nil {
		return output, fmt.Errorf("%w: %s %s: %v: %s", ErrCommandFailed, name, r.mask(strings.Join(args, " ")), err, output)
	}
	return output, nil
}

func (r execRunner) mask(s string) string {
	for _, secret := range r.secrets {
		if secret != "" {
			s = strings.ReplaceAll(s, secret, "***")
		}
	}
	return s
}
