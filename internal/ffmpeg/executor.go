package ffmpeg

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/five82/vpsnr/internal/errors"
)

// maxStderr bounds how much ffmpeg diagnostic output is kept per process.
const maxStderr = 8 << 10

// process is a running decoder.
type process interface {
	Stdout() io.Reader
	// Wait reaps the process after stdout reached EOF.
	Wait() error
	// Kill stops the process and reaps it.
	Kill() error
}

// startFunc launches a decoder for one input.
type startFunc func(ctx context.Context) (process, error)

// execProcess is a decoder backed by an os/exec command.
type execProcess struct {
	binary string
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *tailBuffer

	once    sync.Once
	waitErr error
}

func startExec(ctx context.Context, binary, inputPath string) (*execProcess, error) {
	cmd := exec.CommandContext(ctx, binary, BuildDecodeArgs(inputPath)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.NewIOError("failed to get stdout pipe", err)
	}
	stderr := &tailBuffer{limit: maxStderr}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, errors.NewCommandStartError(binary, err)
	}

	return &execProcess{binary: binary, cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

func (p *execProcess) Stdout() io.Reader {
	return p.stdout
}

func (p *execProcess) Wait() error {
	p.once.Do(func() {
		err := p.cmd.Wait()
		if err == nil {
			return
		}
		if _, ok := err.(*exec.ExitError); ok {
			p.waitErr = errors.WrapExecError(p.binary, err, p.stderr.String())
			return
		}
		p.waitErr = errors.NewCommandWaitError(p.binary, err)
	})
	return p.waitErr
}

func (p *execProcess) Kill() error {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	_ = p.stdout.Close()
	_ = p.Wait()
	return nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, _ := b.buf.Write(p)
	if over := b.buf.Len() - b.limit; over > 0 {
		b.buf.Next(over)
	}
	return n, nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(b.buf.String())
}
