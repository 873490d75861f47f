package cmd

import (
	"github.com/gosuri/uiprogress"
)

// startBar starts a progress bar of total steps. The returned stop func must
// be called before anything else is printed.
func startBar(label string, total int) (*uiprogress.Bar, func()) {
	p := uiprogress.New()
	p.Start()
	bar := p.AddBar(total).AppendCompleted().PrependElapsed()
	bar.PrependFunc(func(b *uiprogress.Bar) string {
		return label + ": "
	})
	return bar, p.Stop
}
