package widgettests

import (
	"sort"
	"strings"

	"github.com/alessio/shellescape"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// WidgetID is the plugin ID of the widget under test.
const WidgetID = "org.kde.plasma.calendar"

const (
	windowedHost     = "plasmawindowed"
	hostShellPackage = "org.kde.plasma.nano"
)

// Warning categories that are known to be noisy when a widget runs under plasmawindowed.
// Everything else is fatal, because of QT_FATAL_WARNINGS.
var quietLoggingRules = []string{
	"qt.accessibility.atspi.warning=false",
	"kf.plasma.core.warning=false",
	"kf.windowsystem.warning=false",
	"kf.kirigami.warning=false",
}

// Capabilities is what the automation server is told when a session is opened.
type Capabilities struct {
	// LaunchCommand is the shell command the server runs to start the application.
	LaunchCommand string
	// Environment is added to the environment of the launched process.
	Environment map[string]string
}

// DefaultCapabilities returns the capabilities for running WidgetID inside plasmawindowed.
func DefaultCapabilities() Capabilities {
	return WidgetCapabilities(WidgetID)
}

// WidgetCapabilities returns the capabilities for running any widget inside plasmawindowed.
func WidgetCapabilities(widgetID string) Capabilities {
	var cmd commandBuilder
	cmd.add(windowedHost, "-p", hostShellPackage, widgetID)
	return Capabilities{
		LaunchCommand: cmd.String(),
		Environment: map[string]string{
			"QT_FATAL_WARNINGS": "1",
			"QT_LOGGING_RULES":  strings.Join(quietLoggingRules, ";"),
		},
	}
}

// AsValue returns the capabilities in the form the automation server expects.
func (c Capabilities) AsValue() ldvalue.Value {
	names := make([]string, 0, len(c.Environment))
	for name := range c.Environment {
		names = append(names, name)
	}
	sort.Strings(names)
	environ := ldvalue.ObjectBuild()
	for _, name := range names {
		environ = environ.Set(name, ldvalue.String(c.Environment[name]))
	}
	return ldvalue.ObjectBuild().
		Set("app", ldvalue.String(c.LaunchCommand)).
		Set("environ", environ.Build()).
		Build()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
