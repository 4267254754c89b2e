package exporters

import (
	"fmt"

	"github.com/kubescape/procguardian/pkg/utils"
)

// AlertTimeLayout renders HH:MM:SS DD:MM:YYYY.
const AlertTimeLayout = "15:04:05 02:01:2006"

// FormatAlertLine renders the alert line written to the log file and the console.
// The trailing separator is kept when the detail is empty.
func FormatAlertLine(alert utils.AlertRecord) string {
	return fmt.Sprintf("%s [ALERT] : %s : PID=%d, NAME=%s, USER=%s, %s",
		alert.Timestamp.Format(AlertTimeLayout),
		alert.RuleLabel,
		alert.PID,
		alert.Name,
		alert.User,
		alert.Detail,
	)
}

func FormatDebugLine(pid int, name, user string) string {
	return fmt.Sprintf("DEBUG: PID=%d, NAME=%s, USER=%s", pid, name, user)
}
