package rgbdtrack

// ProgressFunc receives each completed percentage boundary (0, 10, ... 100)
type ProgressFunc func(percent int)

// progress emits each 10% boundary of the video at most once and in order
type progress struct {
	total  int
	next   int
	report ProgressFunc
}

func newProgress(total int, report ProgressFunc) *progress {
	return &progress{
		total:  total,
		report: report,
	}
}

// update reports every boundary crossed after the given number of frames
// has been retrieved
func (p *progress) update(frames int) {

	if p.total < 1 || p.report == nil {
		return
	}

	for p.next <= 10 && frames*10 >= p.next*p.total {
		p.report(p.next * 10)
		p.next++
	}
}
