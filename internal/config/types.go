package config

type HTTP struct {
	Scheme       string            `hcl:"scheme" yaml:"scheme"`
	Hostname     string            `hcl:"hostname" yaml:"hostname"`
	Port         string            `hcl:"port" yaml:"port"`
	Path         string            `hcl:"path" yaml:"path"`
	Timeout      string            `hcl:"timeout" yaml:"timeout"`
	ExpectStatus string            `hcl:"expectStatus" yaml:"expectStatus"`
	Headers      map[string]string `hcl:"headers" yaml:"headers"`
}

type MySQL struct {
	Hostname string `hcl:"hostname" yaml:"hostname"`
	Port     string `hcl:"port" yaml:"port"`
	User     string `hcl:"user" yaml:"user"`
	Password string `hcl:"password" yaml:"password"`
	Database string `hcl:"database" yaml:"database"`
}

type Redis struct {
	Hostname string `hcl:"hostname" yaml:"hostname"`
	Port     string `hcl:"port" yaml:"port"`
	Password string `hcl:"password" yaml:"password"`
}

type MongoDB struct {
	Hostname string `hcl:"hostname" yaml:"hostname"`
	Port     string `hcl:"port" yaml:"port"`
	User     string `hcl:"user" yaml:"user"`
	Password string `hcl:"password" yaml:"password"`
	Database string `hcl:"database" yaml:"database"`
	URL      string `hcl:"url" yaml:"url"`
}

type Amqp struct {
	Hostname    string `hcl:"hostname" yaml:"hostname"`
	Port        string `hcl:"port" yaml:"port"`
	User        string `hcl:"user" yaml:"user"`
	Password    string `hcl:"password" yaml:"password"`
	VirtualHost string `hcl:"virtualHost" yaml:"virtualHost"`
}

type SMTP struct {
	Hostname string `hcl:"hostname" yaml:"hostname"`
	Port     string `hcl:"port" yaml:"port"`
}

// Dependency is a backend that has to be reachable before suites run.
// Exactly one of the kind fields is expected to be set.
type Dependency struct {
	Name       string   `hcl:",key" yaml:"name"`
	Wait       bool     `hcl:"wait" yaml:"wait"`
	Filesystem string   `hcl:"filesystem" yaml:"filesystem"`
	HTTP       *HTTP    `hcl:"http" yaml:"http"`
	MySQL      *MySQL   `hcl:"mysql" yaml:"mysql"`
	Redis      *Redis   `hcl:"redis" yaml:"redis"`
	MongoDB    *MongoDB `hcl:"mongodb" yaml:"mongodb"`
	Amqp       *Amqp    `hcl:"amqp" yaml:"amqp"`
	SMTP       *SMTP    `hcl:"smtp" yaml:"smtp"`
}

type Marker struct {
	Pattern string `hcl:",key" yaml:"pattern"`
	Label   string `hcl:"label" yaml:"label"`
	Regex   bool   `hcl:"regex" yaml:"regex"`
}

type Target struct {
	Name        string            `hcl:",key" yaml:"name"`
	URL         string            `hcl:"url" yaml:"url"`
	Timeout     string            `hcl:"timeout" yaml:"timeout"`
	Threshold   float64           `hcl:"threshold" yaml:"threshold"`
	ContentType string            `hcl:"contentType" yaml:"contentType"`
	Headers     map[string]string `hcl:"headers" yaml:"headers"`
	Markers     []Marker          `hcl:"marker" yaml:"markers"`
}

type Suite struct {
	Name        string                 `hcl:",key" yaml:"name"`
	Threshold   float64                `hcl:"threshold" yaml:"threshold"`
	Timeout     string                 `hcl:"timeout" yaml:"timeout"`
	Concurrency int                    `hcl:"concurrency" yaml:"concurrency"`
	Headers     map[string]string      `hcl:"headers" yaml:"headers"`
	Params      map[string]interface{} `hcl:"params" yaml:"params"`
	Targets     []Target               `hcl:"target" yaml:"targets"`
}

// Defaults apply to every suite that leaves the corresponding value unset.
type Defaults struct {
	Threshold   float64           `hcl:"threshold" yaml:"threshold"`
	Timeout     string            `hcl:"timeout" yaml:"timeout"`
	Concurrency int               `hcl:"concurrency" yaml:"concurrency"`
	WaitTimeout string            `hcl:"waitTimeout" yaml:"waitTimeout"`
	Headers     map[string]string `hcl:"headers" yaml:"headers"`
}

type Config struct {
	Defaults     *Defaults    `hcl:"defaults" yaml:"defaults"`
	Dependencies []Dependency `hcl:"dependency" yaml:"dependencies"`
	Suites       []Suite      `hcl:"suite" yaml:"suites"`
}
