package authority

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
)

// LoadStaticPrivileges builds a privilege source from the PRIVILEGE_BINDINGS
// environment variable, a JSON object of actor -> taskID -> privileges where
// the empty task key holds actor-wide bindings. A missing or malformed value
// yields an empty source, which denies every privileged operation.
func LoadStaticPrivileges() *StaticPrivilegeSource {
	source := &StaticPrivilegeSource{Bindings: map[string]map[string]Privileges{}}

	raw := os.Getenv("PRIVILEGE_BINDINGS")
	if raw == "" {
		return source
	}
	if err := json.Unmarshal([]byte(raw), &source.Bindings); err != nil {
		logrus.Warn("failed to parse PRIVILEGE_BINDINGS, all privileges denied: ", err)
		source.Bindings = map[string]map[string]Privileges{}
	}
	return source
}
