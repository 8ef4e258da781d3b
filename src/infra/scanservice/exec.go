package scanservice

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"text/template"
	"time"

	"github.com/contre95/scanrelay/src/scanning"
)

// ExecService runs a shell command per scan request. The command is a
// text/template rendered with .Kind, .Key and .Param, where .Param is
// already shell-quoted. The parameter is also passed as "$1" and the bundle
// exported as SCANRELAY_KIND and SCANRELAY_<KEY> environment variables.
type ExecService struct {
	tmpl    *template.Template
	timeout time.Duration
}

func NewExecService(command string, timeout time.Duration) (*ExecService, error) {
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("exec scanner needs a command")
	}
	tmpl, err := template.New("scan").Parse(command)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scanner command: %w", err)
	}
	return &ExecService{tmpl: tmpl, timeout: timeout}, nil
}

func (s *ExecService) Start(ctx context.Context, cmd scanning.Command) error {
	var command strings.Builder
	data := struct {
		Kind  string
		Key   string
		Param string
	}{string(cmd.Kind), cmd.Key(), shellQuote(cmd.Param)}
	if err := s.tmpl.Execute(&command, data); err != nil {
		return fmt.Errorf("failed to render scanner command: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c := exec.CommandContext(ctx, "/bin/sh", "-c", command.String(), "scanrelay", cmd.Param)
	c.Env = append(os.Environ(),
		"SCANRELAY_KIND="+string(cmd.Kind),
		"SCANRELAY_"+strings.ToUpper(cmd.Key())+"="+cmd.Param,
	)
	var stderr bytes.Buffer
	c.Stderr = &stderr
	c.WaitDelay = time.Second

	if err := c.Run(); err != nil {
		return fmt.Errorf("scanner command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	slog.Debug("Scanner command finished", "command", command.String())
	return nil
}

// shellQuote wraps s in single quotes so /bin/sh reads it as one literal word.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
