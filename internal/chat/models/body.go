package models

// Body is the kind-specific payload of a message: TextBody or FileBody.
type Body interface {
	// Summary is what conversation previews show for the message.
	Summary() string
	isBody()
}

type TextBody struct {
	Text string
}

func (b TextBody) Summary() string { return b.Text }
func (TextBody) isBody()           {}

// FileBody points at an uploaded attachment. Path is the storage-relative
// location ("uploads/messages/<stored name>"); OriginalName is what the
// uploader called it.
type FileBody struct {
	Path         string
	OriginalName string
	Size         int64
	MIMEType     string
}

func (b FileBody) Summary() string { return "📎 " + b.OriginalName }
func (FileBody) isBody()           {}

// StoredName is the last path element, which is what download links carry.
func (b FileBody) StoredName() string {
	for i := len(b.Path) - 1; i >= 0; i-- {
		if b.Path[i] == '/' {
			return b.Path[i+1:]
		}
	}
	return b.Path
}
