package model

import "testing"

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		remote  string
		want    RepoRef
		wantErr bool
	}{
		{"git@github.com:acme/widget.git", RepoRef{Owner: "acme", Name: "widget"}, false},
		{"https://github.com/acme/widget.git", RepoRef{Owner: "acme", Name: "widget"}, false},
		{"https://github.com/acme/widget", RepoRef{Owner: "acme", Name: "widget"}, false},
		{"ssh://git@github.com/acme/widget.git", RepoRef{Owner: "acme", Name: "widget"}, false},
		{"git://github.com/acme/widget.git/", RepoRef{Owner: "acme", Name: "widget"}, false},
		{"", RepoRef{}, true},
		{"git@github.com", RepoRef{}, true},
		{"https://github.com/widget", RepoRef{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			got, err := ParseRemoteURL(tt.remote)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRemoteURL(%q) error = %v, wantErr %v", tt.remote, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRemoteURL(%q) = %+v, want %+v", tt.remote, got, tt.want)
			}
		})
	}
}

func TestRunSummaryStage(t *testing.T) {
	s := &RunSummary{Stages: []StageResult{
		{Stage: "bump", Status: StageDone},
		{Stage: "npm", Status: StageSkipped, Detail: "private package"},
	}}

	got, ok := s.Stage("npm")
	if !ok || got.Status != StageSkipped || got.Detail != "private package" {
		t.Errorf("unexpected stage result %+v %v", got, ok)
	}
	if _, ok := s.Stage("github"); ok {
		t.Error("expected github stage to be absent")
	}
}
