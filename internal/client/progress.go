package client

import (
	"io"
	"math"
)

// progressReader reports how much of a body of known length has been read
// by the transport. Reported percentages only ever increase.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	last  int
	emit  func(int)
}

func newProgressReader(r io.Reader, total int64, emit func(int)) *progressReader {
	return &progressReader{r: r, total: total, last: -1, emit: emit}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if pct := percent(p.read, p.total); pct > p.last {
			p.last = pct
			p.emit(pct)
		}
	}
	return n, err
}

// percent returns done/total as a rounded percentage clamped to [0, 100].
func percent(done, total int64) int {
	if total <= 0 || done <= 0 {
		return 0
	}
	if done >= total {
		return 100
	}
	pct := int(math.Round(float64(done) * 100 / float64(total)))
	if pct > 100 {
		return 100
	}
	return pct
}
