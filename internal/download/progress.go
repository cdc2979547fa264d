package download

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

func (l ProgressLevel) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// ProgressEvent represents a pipeline progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Stats is a point-in-time snapshot of a run's counters.
type Stats struct {
	AssetsResolved int32 // metadata lookups finished, hit or miss
	AssetsTotal    int32
	CoversWritten  int32
	CoversSelected int32
	BytesReceived  int64
}

// Progress returns the counters of the current or most recent run.
// It is safe to call from any goroutine while a run is in progress.
func (p *Pipeline) Progress() Stats {
	return Stats{
		AssetsResolved: p.assetsResolved.Load(),
		AssetsTotal:    p.assetsTotal.Load(),
		CoversWritten:  p.coversWritten.Load(),
		CoversSelected: p.coversSelected.Load(),
		BytesReceived:  p.receivedBytes.Load(),
	}
}

func (p *Pipeline) resetProgress() {
	p.assetsResolved.Store(0)
	p.assetsTotal.Store(0)
	p.coversWritten.Store(0)
	p.coversSelected.Store(0)
	p.receivedBytes.Store(0)
}

func (p *Pipeline) addBytes(n int64) {
	p.receivedBytes.Add(n)
}

func (p *Pipeline) progress(event ProgressEvent) {
	if p.onProgress != nil {
		p.onProgress(event)
	}
}
