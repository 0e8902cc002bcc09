package dav

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xxxsen/occlient/apierr"
	"github.com/xxxsen/occlient/xmltree"
	"golang.org/x/text/unicode/norm"
)

// ParseMultistatus converts a multistatus body into file entries, in the
// order the server listed them. The namespace bindings of the root element
// are resolved first so any prefix bound to DAV: is accepted.
func ParseMultistatus(body []byte, mount string) ([]*FileInfo, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return []*FileInfo{}, nil
	}
	ns, err := xmltree.Namespaces(body)
	if err != nil {
		return nil, apierr.NewDecode("read multistatus namespaces failed", err)
	}
	if _, ok := xmltree.PrefixOf(ns, NamespaceDAV); !ok {
		return nil, apierr.NewDecode("no DAV: namespace bound on multistatus", nil)
	}
	root, err := xmltree.Parse(body)
	if err != nil {
		return nil, apierr.NewDecode("parse multistatus failed", err)
	}
	if !root.Is(NamespaceDAV, "multistatus") {
		return nil, apierr.NewDecode(fmt.Sprintf("unexpected root element:%s", root.Name.Local), nil)
	}
	rsps := root.ChildrenNamed(NamespaceDAV, "response")
	rs := make([]*FileInfo, 0, len(rsps))
	for _, item := range rsps {
		fi, err := parseResponse(item, mount)
		if err != nil {
			return nil, err
		}
		rs = append(rs, fi)
	}
	return rs, nil
}

func parseResponse(item *xmltree.Node, mount string) (*FileInfo, error) {
	href := item.Child(NamespaceDAV, "href")
	if href == nil {
		return nil, apierr.NewDecode("response without href", nil)
	}
	typ := FileTypeFile
	if strings.HasSuffix(href.Text, "/") {
		typ = FileTypeDir
	}
	name, err := hrefToPath(href.Text, mount)
	if err != nil {
		return nil, apierr.NewDecode("decode href failed, href:"+href.Text, err)
	}
	return NewFileInfo(name, typ, readProps(item)), nil
}

// hrefToPath drops every segment up to and including the mount segment and
// decodes the rest. Names are returned in NFC so that servers sending
// decomposed sequences yield the same path as composed ones.
func hrefToPath(href string, mount string) (string, error) {
	segs := strings.Split(href, "/")
	start := 0
	for i, seg := range segs {
		if seg == mount {
			start = i
			break
		}
	}
	name := "/" + strings.Join(segs[start+1:], "/")
	name, err := DecodePath(name)
	if err != nil {
		return "", err
	}
	return norm.NFC.String(name), nil
}

// readProps copies the prop element of the successful propstat. When no
// propstat reports 200, the first one is used.
func readProps(item *xmltree.Node) map[string]string {
	stats := item.ChildrenNamed(NamespaceDAV, "propstat")
	if len(stats) == 0 {
		return map[string]string{}
	}
	chosen := stats[0]
	for _, st := range stats {
		status := st.Child(NamespaceDAV, "status")
		if status != nil && strings.Contains(status.Text, " 200 ") {
			chosen = st
			break
		}
	}
	prop := chosen.Child(NamespaceDAV, "prop")
	rs := make(map[string]string)
	if prop == nil {
		return rs
	}
	for _, p := range prop.Children {
		rs[PropKey(p.Name.Space, p.Name.Local)] = propValue(p)
	}
	return rs
}

// propValue is the text of p, or the names of its children for structured
// properties such as resourcetype.
func propValue(p *xmltree.Node) string {
	if len(p.Text) != 0 || len(p.Children) == 0 {
		return p.Text
	}
	names := make([]string, 0, len(p.Children))
	for _, c := range p.Children {
		names = append(names, c.Name.Local)
	}
	return strings.Join(names, " ")
}
