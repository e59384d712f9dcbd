package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// daemonize re-executes the current command in the background, detached
// from the terminal, with the --detach flag stripped to prevent
// recursion.
func daemonize() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}

	args := make([]string, 0, len(os.Args)-1)
	for _, arg := range os.Args[1:] {
		if arg == "--detach" {
			continue
		}
		args = append(args, arg)
	}

	child := exec.Command(executable, args...)
	child.Dir = cwd

	nullDev, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", os.DevNull, err)
	}
	defer nullDev.Close()

	child.Stdin = nullDev
	child.Stdout = nullDev
	child.Stderr = nullDev

	// Detach from the process group
	child.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	if err := child.Start(); err != nil {
		return fmt.Errorf("failed to start background process: %w", err)
	}

	fmt.Printf("sigdrift started in background (PID: %d)\n", child.Process.Pid)
	return nil
}
