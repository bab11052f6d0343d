package widgettests

import (
	"github.com/kde/plasma-widget-tests/framework"

	"github.com/stretchr/testify/require"
)

// The calendar's header buttons and view tabs, which are all present as soon as it is shown.
var calendarElementNames = []string{"Today", "Days", "Months", "Years"}

// DoWidgetOpensTest checks that the widget was opened, by looking up each of its expected
// elements by name. The first lookup that fails ends the test.
func (t *T) DoWidgetOpensTest(c *framework.Context) {
	for _, name := range calendarElementNames {
		_, err := t.session.FindElementByName(name)
		require.NoError(c, err, "element %q was not found", name)
		c.Debug("Found element %q", name)
	}
}
