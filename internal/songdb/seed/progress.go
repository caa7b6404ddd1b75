package seed

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressBar is a thin wrapper over progressbar that ignores render
// errors, since a broken terminal must not abort the seed.
type progressBar struct {
	pb *progressbar.ProgressBar
}

func newProgressBar(w io.Writer, description string, maxItems int) *progressBar {
	pb := progressbar.NewOptions(
		maxItems,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(w, "\n") }),
	)
	_ = pb.Set(0)
	return &progressBar{pb: pb}
}

func (p *progressBar) Inc() {
	_ = p.pb.Add(1)
}

func (p *progressBar) Finish() {
	_ = p.pb.Finish()
	_ = p.pb.Close()
}
