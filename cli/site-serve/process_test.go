package main

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess runs main in a child process started by startProcess.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("SITE_SERVE_HELPER") != "1" {
		return
	}
	os.Args = append([]string{"site-serve"}, strings.Fields(os.Getenv("SITE_SERVE_ARGS"))...)
	main()
	os.Exit(0)
}

func freePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	return port
}

func serveArgs(root string, port int) string {
	return "--listen 127.0.0.1 --port " + strconv.Itoa(port) + " --root " + root
}

func startProcess(t *testing.T, args string) (*exec.Cmd, io.Reader, *bytes.Buffer) {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=^TestHelperProcess$")
	cmd.Env = append(os.Environ(), "SITE_SERVE_HELPER=1", "SITE_SERVE_ARGS="+args)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	stderr := new(bytes.Buffer)
	cmd.Stderr = stderr
	require.NoError(t, cmd.Start())
	t.Cleanup(func() { cmd.Process.Kill() })
	return cmd, stdout, stderr
}

func waitBanner(t *testing.T, stdout io.Reader) *bufio.Reader {
	t.Helper()
	reader := bufio.NewReader(stdout)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Contains(t, line, "Server running at http://localhost:")
	return reader
}

type processExit struct {
	output string
	err    error
}

// interruptOnBanner signals the child as soon as the first banner line
// appears, then collects the rest of its output and its exit status.
func interruptOnBanner(cmd *exec.Cmd, stdout io.Reader) <-chan processExit {
	exited := make(chan processExit, 1)
	go func() {
		reader := bufio.NewReader(stdout)
		line, err := reader.ReadString('\n')
		if err != nil || !strings.Contains(line, "Server running at http://localhost:") {
			exited <- processExit{output: line, err: errors.New("no banner: " + line)}
			return
		}
		err = cmd.Process.Signal(os.Interrupt)
		if err != nil {
			exited <- processExit{output: line, err: err}
			return
		}
		rest, _ := io.ReadAll(reader)
		exited <- processExit{output: line + string(rest), err: cmd.Wait()}
	}()
	return exited
}

func TestProcessInterrupt(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("interrupt signals are not delivered to child processes on windows")
	}
	root := t.TempDir()
	for i := 0; i < 10; i++ {
		t.Run("attempt "+strconv.Itoa(i), func(t *testing.T) {
			cmd, stdout, _ := startProcess(t, serveArgs(root, freePort(t)))
			select {
			case exit := <-interruptOnBanner(cmd, stdout):
				require.NoError(t, exit.err)
				assert.Contains(t, exit.output, "Server stopped")
			case <-time.After(10 * time.Second):
				t.Fatal("server did not stop after interrupt")
			}
		})
	}
}

func TestProcessAddressInUse(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("interrupt signals are not delivered to child processes on windows")
	}
	root := t.TempDir()
	port := freePort(t)
	first, stdout, _ := startProcess(t, serveArgs(root, port))
	waitBanner(t, stdout)

	second, _, stderr := startProcess(t, serveArgs(root, port))
	err := second.Wait()
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.NotEqual(t, 0, exitErr.ExitCode())
	assert.Contains(t, stderr.String(), "address already in use")

	conn, err := net.Dial("tcp", "127.0.0.1:"+strconv.Itoa(port))
	require.NoError(t, err)
	conn.Close()
	require.NoError(t, first.Process.Signal(os.Interrupt))
}
