package transport

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Console is a terminal Sender for local use and development: text goes
// to the writer, photos and documents are saved next to the process and
// announced by path.
type Console struct {
	out io.Writer
	dir string
}

// NewConsole creates a console sender writing binary payloads into dir.
func NewConsole(out io.Writer, dir string) *Console {
	return &Console{out: out, dir: dir}
}

func (c *Console) SendText(_ context.Context, _ int64, text string) error {
	_, err := fmt.Fprintf(c.out, "%s\n\n", text)
	return err
}

func (c *Console) SendPhoto(ctx context.Context, userID int64, image []byte, caption string) error {
	path := filepath.Join(c.dir, "cover.jpg")
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return fmt.Errorf("save photo: %w", err)
	}
	return c.SendText(ctx, userID, fmt.Sprintf("[cover saved to %s]\n%s", path, caption))
}

func (c *Console) SendDocument(ctx context.Context, userID int64, data []byte, filename string) error {
	path := filepath.Join(c.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return c.SendText(ctx, userID, fmt.Sprintf("[document saved to %s]", path))
}
