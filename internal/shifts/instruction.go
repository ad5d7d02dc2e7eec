package shifts

import (
	"fmt"
	"strings"
)

// BuildInstruction returns the text sent to the recognizer alongside the image.
func BuildInstruction(targetName, yearMonth string) string {
	targetName = strings.TrimSpace(targetName)
	yearMonth = strings.TrimSpace(yearMonth)

	return fmt.Sprintf(`You read photographed work-shift schedules.
Extract every shift that belongs to the person named %q.
The image may contain rows for several people; ignore every row that is not %q.

The schedule covers the month %s. Cells usually show only the day of the month;
combine that day with %s to build the full date.

Respond with a JSON list only. Each element must be an object with exactly these keys:
- "date": the shift date as YYYY-MM-DD (e.g. "%s-01")
- "start": the start time as 24-hour HH:MM (e.g. "09:30")
- "end": the end time as 24-hour HH:MM (e.g. "18:00")

Do not wrap the list in markdown code fences and do not add any other text.
If %q has no shifts in the image, respond with [].`,
		targetName, targetName, yearMonth, yearMonth, yearMonth, targetName)
}
