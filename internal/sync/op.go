package sync

type OpType uint8

var opTypeNames = []string{
	"CreateFolder",
	"CreateDocument",
	"UpdateDocument",
	"DeleteNode",
}

const (
	OpCreateFolder OpType = iota
	OpCreateDocument
	OpUpdateDocument
	OpDeleteNode
)

func (op OpType) String() string {
	return opTypeNames[op]
}

// Operation is one unit of remote work derived by the diff engine. It
// lives only for the duration of a single apply pass.
type Operation struct {
	Type        OpType
	Path        string // slash-separated path relative to the local root
	Title       string // document title or folder name
	Dir         string // parent dir rel path, "." at the root
	NodeID      string // remote id for update/delete, empty for creates
	Fingerprint string // md5 of the local content for create/update
	AbsPath     string // local file to read on create/update
	Size        int64
}
