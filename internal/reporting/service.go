package reporting

import (
	"context"
	"errors"
	"sort"

	"ivr-gateway/internal/calllog"
)

// CallSource is the slice of the call log this package needs.
type CallSource interface {
	ListExcludingIgnored(ctx context.Context) ([]calllog.AggregateRow, error)
}

type Service struct {
	calls CallSource
}

func NewService(calls CallSource) *Service { return &Service{calls: calls} }

// Summary aggregates the call log.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	if s.calls == nil {
		return Summary{}, errors.New("reporting: call source not configured")
	}

	rows, err := s.calls.ListExcludingIgnored(ctx)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{Rows: rows}
	callers := map[string]struct{}{}
	codeCounts := map[string]int{}
	codeCallers := map[string]map[string]struct{}{}

	for _, r := range rows {
		out.TotalCalls++
		callers[r.Number] = struct{}{}
		if r.Code == nil {
			continue
		}
		code := *r.Code
		codeCounts[code]++
		if codeCallers[code] == nil {
			codeCallers[code] = map[string]struct{}{}
		}
		codeCallers[code][r.Number] = struct{}{}
	}
	out.UniqueCallers = len(callers)

	for code, n := range codeCounts {
		out.Codes = append(out.Codes, CodeCount{
			Code:          code,
			Count:         n,
			UniqueCallers: len(codeCallers[code]),
		})
	}
	sort.Slice(out.Codes, func(i, j int) bool {
		if out.Codes[i].Count != out.Codes[j].Count {
			return out.Codes[i].Count > out.Codes[j].Count
		}
		return out.Codes[i].Code < out.Codes[j].Code
	})

	return out, nil
}
