package commitlog

// Kind distinguishes commits whose header follows the conventional
// `type(scope)!: description` shape from those that do not.
type Kind int

const (
	// Unclassified commits keep their raw header but carry no type.
	Unclassified Kind = iota
	// Conventional commits have a parsed type and description.
	Conventional
)

// String returns the kind name.
func (k Kind) String() string {
	if k == Conventional {
		return "conventional"
	}
	return "unclassified"
}

// IssueRefs groups issue numbers referenced from commit footers by link verb.
type IssueRefs struct {
	Fixes    []int `json:"fixes,omitempty"`
	Closes   []int `json:"closes,omitempty"`
	Resolves []int `json:"resolves,omitempty"`
	Related  []int `json:"related,omitempty"`
	Refs     []int `json:"refs,omitempty"`
}

// Empty reports whether no issue references were found.
func (r IssueRefs) Empty() bool {
	return len(r.Fixes)+len(r.Closes)+len(r.Resolves)+len(r.Related)+len(r.Refs) == 0
}

// Commit is a single parsed commit.
type Commit struct {
	Kind        Kind      `json:"kind"`
	Type        string    `json:"type"`
	Scope       string    `json:"scope,omitempty"`
	Breaking    bool      `json:"breaking"`
	Breaks      string    `json:"breaks,omitempty"`
	Description string    `json:"description"`
	Gitmoji     []string  `json:"gitmoji,omitempty"`
	PR          string    `json:"pr,omitempty"`
	Issues      IssueRefs `json:"issues"`

	Header string `json:"header"`
	Body   string `json:"body,omitempty"`
	Footer string `json:"footer,omitempty"`

	ShortHash string `json:"shortHash"`
	FullHash  string `json:"fullHash"`
}

// IsConventional reports whether the header was parsed.
func (c Commit) IsConventional() bool {
	return c.Kind == Conventional
}
