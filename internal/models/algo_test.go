package models

import (
	"reflect"
	"testing"
)

func TestRecentLogsChronologicalOrder(t *testing.T) {
	status := &AlgoStatus{
		Running: true,
		Logs: []AlgoLogEntry{
			{Time: "10:03", Action: AlgoActionSignalSell},
			{Time: "10:02", Action: AlgoActionHold},
			{Time: "10:01", Action: AlgoActionSignalBuy},
			{Time: "10:00", Action: AlgoActionStarted},
		},
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"all entries oldest first", 0, []string{"10:00", "10:01", "10:02", "10:03"}},
		{"newest two, oldest first", 2, []string{"10:02", "10:03"}},
		{"limit beyond length", 10, []string{"10:00", "10:01", "10:02", "10:03"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := status.RecentLogs(tt.limit)
			times := make([]string, len(got))
			for i, entry := range got {
				times[i] = entry.Time
			}
			if !reflect.DeepEqual(times, tt.want) {
				t.Fatalf("RecentLogs(%d) order = %v, want %v", tt.limit, times, tt.want)
			}
		})
	}

	if status.Logs[0].Time != "10:03" {
		t.Fatalf("receiver mutated: newest entry is %q", status.Logs[0].Time)
	}
}

func TestRecentLogsEmpty(t *testing.T) {
	status := &AlgoStatus{}
	if got := status.RecentLogs(5); len(got) != 0 {
		t.Fatalf("RecentLogs on empty status = %v", got)
	}
}
