package ports

import "github.com/bnema/orderlink/internal/domain"

type Metrics interface {
	FragmentReceived(bytes int)
	FragmentDropped(reason string)
	RecordCompleted()
	FragmentSent(ok bool)
	ConnectionPhase(phase domain.ConnectionPhase)
	BufferedBytes(total int)
}

type NopMetrics struct{}

func (NopMetrics) FragmentReceived(int)                   {}
func (NopMetrics) FragmentDropped(string)                 {}
func (NopMetrics) RecordCompleted()                       {}
func (NopMetrics) FragmentSent(bool)                      {}
func (NopMetrics) ConnectionPhase(domain.ConnectionPhase) {}
func (NopMetrics) BufferedBytes(int)                      {}
