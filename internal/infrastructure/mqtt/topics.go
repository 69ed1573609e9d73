package mqtt

import (
	"strings"
)

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "graylogic/registry"

// Topic segments below the prefix.
const (
	valuesSegment = "values"
	statusSegment = "status"
)

// Topics builds registry MQTT topics under a common prefix.
//
// Each parameter lives on its own retained topic whose tail is the
// parameter's path:
//
//	topics := mqtt.NewTopics("graylogic/registry")
//	topics.Value("1/0/0/2")
//	// Returns: "graylogic/registry/values/1/0/0/2"
type Topics struct {
	prefix string
}

// NewTopics returns a builder for prefix. Leading and trailing slashes are
// trimmed; an empty prefix selects DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the topic prefix.
func (t Topics) Prefix() string {
	return t.prefix
}

// Value returns the retained topic holding the parameter at path.
func (t Topics) Value(path string) string {
	return t.values() + "/" + strings.Trim(path, "/")
}

// ValuesUnder returns a wildcard filter matching every parameter beneath
// path. An empty path or "/" matches all values.
func (t Topics) ValuesUnder(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return t.values() + "/#"
	}
	return t.values() + "/" + path + "/#"
}

// Status returns the registry's online/offline status topic.
func (t Topics) Status() string {
	return t.prefix + "/" + statusSegment
}

// PathFromTopic extracts the parameter path from a value topic.
// It reports false for topics outside the values subtree.
func (t Topics) PathFromTopic(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, t.values()+"/")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

func (t Topics) values() string {
	return t.prefix + "/" + valuesSegment
}
