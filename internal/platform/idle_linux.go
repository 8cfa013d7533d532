package platform

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"pomotasks/internal/core/session"
)

// idleCommands report idle time in milliseconds on X11.
var idleCommands = [][]string{
	{"xprintidle"},
	{"xssstate", "-i"},
}

type idleProvider struct {
	command []string
}

func newIdleProvider() session.IdleChecker {
	for _, command := range idleCommands {
		path, err := exec.LookPath(command[0])
		if err != nil {
			continue
		}
		return &idleProvider{command: append([]string{path}, command[1:]...)}
	}
	return unsupportedIdleProvider{}
}

func (provider *idleProvider) IdleDuration() (time.Duration, error) {
	output, err := exec.Command(provider.command[0], provider.command[1:]...).Output()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", provider.command[0], err)
	}
	idleMillis, err := strconv.ParseInt(strings.TrimSpace(string(output)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse idle milliseconds: %w", err)
	}
	if idleMillis < 0 {
		idleMillis = 0
	}
	return time.Duration(idleMillis) * time.Millisecond, nil
}
