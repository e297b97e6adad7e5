package main

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
)

type opener interface {
	Open(ctx context.Context, url string) error
}

// systemOpener hands a URL to the platform's default browser launcher.
type systemOpener struct {
	goos   string
	getenv func(string) string
}

func goos() string {
	return runtime.GOOS
}

func (o systemOpener) command(url string) (string, []string) {
	switch {
	case o.goos == "android" || o.getenv("TERMUX_VERSION") != "" || strings.Contains(o.getenv("PREFIX"), "com.termux"):
		return "termux-open-url", []string{url}
	case o.goos == "darwin":
		return "open", []string{url}
	case o.goos == "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

func (o systemOpener) Open(ctx context.Context, url string) error {
	name, args := o.command(url)

	return exec.CommandContext(ctx, name, args...).Run()
}
