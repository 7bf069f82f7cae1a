package models

type MessageKind string

const (
	KindText       MessageKind = "text"
	KindImage      MessageKind = "image"
	KindFile       MessageKind = "file"
	KindTaskUpdate MessageKind = "task_update"
)

func (k MessageKind) Valid() bool {
	switch k {
	case KindText, KindImage, KindFile, KindTaskUpdate:
		return true
	}
	return false
}

// RequiresFile is true for kinds whose body is a FileBody.
func (k MessageKind) RequiresFile() bool {
	return k == KindImage || k == KindFile
}
