package entities

// CommandKind identifies the variant of a Command.
type CommandKind int

const (
	KindAsk CommandKind = iota
	KindCode
	KindAdd
	KindDrop
	KindDiff
)

func (k CommandKind) String() string {
	switch k {
	case KindAsk:
		return "ask"
	case KindCode:
		return "code"
	case KindAdd:
		return "add"
	case KindDrop:
		return "drop"
	case KindDiff:
		return "diff"
	}
	return "unknown"
}

// Command is one user request for the active session. The set of
// implementations is closed: Ask, Code, AddFiles, DropFiles and ShowDiff.
type Command interface {
	Kind() CommandKind
	command()
}

// Ask asks a question about the code without requesting edits.
type Ask struct {
	Message string
}

// Code is a free-form message handed to the session as is.
type Code struct {
	Message string
}

// AddFiles adds files to the session's chat.
type AddFiles struct {
	Files []string
}

// DropFiles removes files from the session's chat.
type DropFiles struct {
	Files []string
}

// ShowDiff asks the session for the diff of its latest edits.
type ShowDiff struct{}

func (Ask) Kind() CommandKind       { return KindAsk }
func (Code) Kind() CommandKind      { return KindCode }
func (AddFiles) Kind() CommandKind  { return KindAdd }
func (DropFiles) Kind() CommandKind { return KindDrop }
func (ShowDiff) Kind() CommandKind  { return KindDiff }

func (Ask) command()       {}
func (Code) command()      {}
func (AddFiles) command()  {}
func (DropFiles) command() {}
func (ShowDiff) command()  {}
