package ocs

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xxxsen/occlient/apierr"
	"github.com/xxxsen/occlient/xmltree"
)

type Meta struct {
	Status     string
	StatusCode int
	Message    string
}

// Response is a successfully interpreted OCS reply.
type Response struct {
	HTTPStatus int
	Body       []byte
	Meta       Meta
	Tree       map[string]interface{}
}

// Data returns the payload found under ocs.data.
func (r *Response) Data() interface{} {
	ocs, ok := r.Tree["ocs"].(map[string]interface{})
	if !ok {
		return nil
	}
	return ocs["data"]
}

// Decode copies the ocs.data payload into out, using json tags. Values sent
// as text by XML servers are converted to the target field types.
func (r *Response) Decode(out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(r.Data()); err != nil {
		return apierr.NewDecode("decode ocs data failed", err)
	}
	return nil
}

// interpret turns a raw body into a Response. The XML envelope is tried
// first, then JSON.
func interpret(httpStatus int, body []byte, accepted []int) (*Response, error) {
	tree, err := parseXMLTree(body)
	if err != nil {
		tree, err = parseJSONTree(body)
		if err != nil {
			return nil, apierr.NewDecode("invalid response body: "+string(body), err)
		}
		if msg, ok := tree["message"]; ok {
			e := apierr.NewStatus(toString(msg))
			e.HTTPStatus = httpStatus
			return nil, e
		}
	}
	if err := checkStatus(tree, accepted); err != nil {
		if e, ok := apierr.AsError(err); ok {
			e.HTTPStatus = httpStatus
		}
		return nil, err
	}
	return &Response{
		HTTPStatus: httpStatus,
		Body:       body,
		Meta:       readMeta(tree),
		Tree:       tree,
	}, nil
}

func parseXMLTree(body []byte) (map[string]interface{}, error) {
	root, err := xmltree.Parse(body)
	if err != nil {
		return nil, err
	}
	return root.ToMap(), nil
}

func parseJSONTree(body []byte) (map[string]interface{}, error) {
	tree := make(map[string]interface{})
	if err := json.Unmarshal(body, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func metaOf(tree map[string]interface{}) (map[string]interface{}, bool) {
	ocs, ok := tree["ocs"].(map[string]interface{})
	if !ok {
		return nil, false
	}
	meta, ok := ocs["meta"].(map[string]interface{})
	return meta, ok
}

func readMeta(tree map[string]interface{}) Meta {
	meta, ok := metaOf(tree)
	if !ok {
		return Meta{}
	}
	code, _ := toInt(meta["statuscode"])
	return Meta{
		Status:     toString(meta["status"]),
		StatusCode: code,
		Message:    toString(meta["message"]),
	}
}

// checkStatus rejects an envelope whose status code is outside accepted.
// Without a message the whole tree is handed back as the error payload.
// A tree without ocs.meta passes.
func checkStatus(tree map[string]interface{}, accepted []int) error {
	if len(accepted) == 0 {
		accepted = []int{StatusOK}
	}
	meta, ok := metaOf(tree)
	if !ok {
		return nil
	}
	code, ok := toInt(meta["statuscode"])
	if ok && containsCode(accepted, code) {
		return nil
	}
	e := &apierr.Error{
		Kind:       apierr.KindStatus,
		StatusCode: code,
		Message:    toString(meta["message"]),
	}
	if len(e.Message) == 0 {
		e.Payload = tree
	}
	return e
}

// StatusCode returns ocs.meta.statuscode of tree.
func StatusCode(tree map[string]interface{}) (int, bool) {
	meta, ok := metaOf(tree)
	if !ok {
		return 0, false
	}
	return toInt(meta["statuscode"])
}

// CheckProvisioning fails when the provisioning api is switched off on the
// server, which it reports through status code 999.
func CheckProvisioning(rsp *Response) error {
	code, _ := StatusCode(rsp.Tree)
	if code == StatusProvisioningDisable {
		e := apierr.NewStatus("Provisioning API has been disabled at your instance")
		e.StatusCode = code
		return e
	}
	return nil
}

func containsCode(codes []int, code int) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

func toInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case json.Number:
		i, err := t.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		return i, err == nil
	}
	return 0, false
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]interface{}:
		if len(t) == 0 {
			return ""
		}
	}
	return fmt.Sprintf("%v", v)
}
