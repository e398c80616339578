package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	cfg := []string{"-c", "--config"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"separate value", []string{"-c", "smartstudy.json", "-a", ":3000"}, cfg, []string{"-c", "smartstudy.json"}},
		{"equals form", []string{"--config=prod.json", "-d", "file:study.db"}, cfg, []string{"--config=prod.json"}},
		{"mixed forms keep order", []string{"--config=a.json", "-c", "b.json", "-l", "debug"}, cfg, []string{"--config=a.json", "-c", "b.json"}},
		{"nothing allowed present", []string{"-a", ":3000", "--log-format=console", "extra"}, cfg, []string{}},
		{"dangling flag", []string{"-c"}, cfg, []string{"-c"}},
		{"next token is a flag", []string{"-c", "-production"}, cfg, []string{"-c"}},
		{"dash inside equals value", []string{"--config=-odd.json"}, []string{"--config"}, []string{"--config=-odd.json"}},
		{"several allowed names", []string{"-env", ".env.local", "-c", "smartstudy.json", "-k", "secret"}, []string{"-c", "-env"}, []string{"-env", ".env.local", "-c", "smartstudy.json"}},
		{"no args", nil, cfg, []string{}},
		{"absolute path", []string{"-c", "/etc/smartstudy/config.json"}, []string{"-c"}, []string{"-c", "/etc/smartstudy/config.json"}},
		{"repeated flag", []string{"-env", "a.env", "-env", "b.env"}, []string{"-env"}, []string{"-env", "a.env", "-env", "b.env"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func Test_jsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	for _, tc := range []struct {
		args []string
		want string
	}{
		{[]string{"server", "-c", "dev.json"}, "dev.json"},
		{[]string{"server", "-config", "prod.json", "-a", ":8080"}, "prod.json"},
		{[]string{"server", "-a", ":8080", "-l", "debug"}, ""},
		{[]string{"server", "-c", "dev.json", "-config", "prod.json"}, "prod.json"},
	} {
		os.Args = tc.args
		assert.Equal(t, tc.want, JsonConfigFlags(), "%v", tc.args)
	}
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		names []string
		want  string
	}{
		{name: "separate value", args: []string{"-env", "prod.env"}, names: []string{"env"}, want: "prod.env"},
		{name: "equals form", args: []string{"--env=local.env", "-a", ":3000"}, names: []string{"env"}, want: "local.env"},
		{name: "absent", args: []string{"-a", ":3000"}, names: []string{"env"}, want: ""},
		{name: "aliases, last wins", args: []string{"-c", "a.json", "--config", "b.json"}, names: []string{"c", "config"}, want: "b.json"},
		{name: "missing value", args: []string{"-env"}, names: []string{"env"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValueOf(tt.args, tt.names...))
		})
	}
}

func TestEnvFileFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-d", "file:study.db", "-env", "/etc/smartstudy.env"}
	assert.Equal(t, "/etc/smartstudy.env", EnvFileFlag())

	os.Args = []string{"testbin"}
	assert.Empty(t, EnvFileFlag())
}
