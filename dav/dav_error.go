package dav

import (
	"fmt"

	"github.com/xxxsen/occlient/xmltree"
)

// ParseError extracts the message of a DAV error body. When the body has
// no message element the whole parsed tree is returned instead.
func ParseError(body []byte) (string, map[string]interface{}, error) {
	root, err := xmltree.Parse(body)
	if err != nil {
		return "", nil, err
	}
	if !root.Is(NamespaceDAV, "error") {
		return "", nil, fmt.Errorf("not a dav error document, root:%s", root.Name.Local)
	}
	msg := root.Child(NamespaceSabre, "message")
	if msg == nil {
		msg = root.ChildLocal("message")
	}
	if msg != nil && len(msg.Text) != 0 {
		return msg.Text, nil, nil
	}
	return "", root.ToMap(), nil
}
