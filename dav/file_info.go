package dav

import (
	"net/http"
	"strconv"
	"time"
)

const (
	NamespaceDAV      = "DAV:"
	NamespaceSabre    = "http://sabredav.org/ns"
	NamespaceOwncloud = "http://owncloud.org/ns"
)

const (
	FileTypeFile = "file"
	FileTypeDir  = "dir"
)

// FileInfo is one entry of a PROPFIND answer. Props are keyed by the
// expanded property name, e.g. "{DAV:}getetag".
type FileInfo struct {
	Name  string
	Type  string
	Props map[string]string
}

func NewFileInfo(name string, typ string, props map[string]string) *FileInfo {
	if props == nil {
		props = make(map[string]string)
	}
	return &FileInfo{Name: name, Type: typ, Props: props}
}

func PropKey(space, local string) string {
	return "{" + space + "}" + local
}

func (f *FileInfo) Prop(space, local string) string {
	return f.Props[PropKey(space, local)]
}

func (f *FileInfo) IsDir() bool {
	return f.Type == FileTypeDir
}

// Size returns getcontentlength for files and the owncloud size property for
// directories.
func (f *FileInfo) Size() int64 {
	raw := f.Prop(NamespaceDAV, "getcontentlength")
	if len(raw) == 0 {
		raw = f.Prop(NamespaceOwncloud, "size")
	}
	sz, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return sz
}

func (f *FileInfo) ETag() string {
	return f.Prop(NamespaceDAV, "getetag")
}

func (f *FileInfo) ContentType() string {
	return f.Prop(NamespaceDAV, "getcontenttype")
}

func (f *FileInfo) FileID() string {
	return f.Prop(NamespaceOwncloud, "fileid")
}

func (f *FileInfo) LastModified() (time.Time, bool) {
	raw := f.Prop(NamespaceDAV, "getlastmodified")
	if len(raw) == 0 {
		return time.Time{}, false
	}
	t, err := http.ParseTime(raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
