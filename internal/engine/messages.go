package engine

import (
	"fmt"

	"github.com/sunieldevarapu/deployment-scheduler/internal/octopus"
	"github.com/sunieldevarapu/deployment-scheduler/internal/snow"
)

// messageHeader opens every per-task notification with the task number, its
// planned window on the deployment clock, and the description.
func (e *Engine) messageHeader(task snow.ChangeTask) string {
	start := e.Clock.DisplayTime(e.Clock.ToDeploymentClock(task.PlannedStart, false))
	end := e.Clock.DisplayTime(e.Clock.ToDeploymentClock(task.PlannedStart, true))
	return fmt.Sprintf(
		"ServiceNow Item: _%s_ \nTime: _%s - %s_ \nDescription: _%s_ \n",
		task.Number, start, end, task.ShortDescription,
	)
}

func claimFailedText(header string) string {
	return header + "Status: **Failed to assign ServiceNow item to the automation account.** \n"
}

func skipOverrideText(header string) string {
	return header +
		"Status: **Found override keyword SKIP.** \n" +
		"  - ServiceNow item has been returned to the queue. \n" +
		"  - Deployment HAS NOT been scheduled. The development team will trigger it manually. \n" +
		"_No further action needed._ \n"
}

func manualOverrideText(header string) string {
	return header +
		"Status: **Found override keyword MANUAL.** \n" +
		"  - Please assign this ServiceNow item to whoever is on call the week of the deployment. \n"
}

func noReleaseTokenText(header string) string {
	return header +
		"Status: **Unable to extract release from ServiceNow short description.** \n" +
		"_Possible Solutions:_ \n" +
		"  - Please ensure the title follows: Deploy [_project name_] [_release number_] [_override_] \n"
}

func projectNotFoundText(header string) string {
	return header +
		"Status: **Unable to find project in Octopus Deploy.** \n" +
		"_Possible Solutions:_ \n" +
		"  - Please verify the project name is spelled correctly in the title. \n"
}

func releaseNotFoundText(header, token string) string {
	return header +
		fmt.Sprintf("Status: **The release number %s was not found in Octopus Deploy!** \n", token) +
		"_Possible Solutions:_ \n" +
		"  - Please ensure the release in the ServiceNow item matches the release being deployed. \n"
}

func alreadyScheduledText(header string) string {
	return header +
		"Status: **Release has already been scheduled in Octopus Deploy!** \n" +
		"  - Verify that the date and time match what is on the Change Task. \n"
}

func notPromotableText(header, token string) string {
	return header +
		fmt.Sprintf("Status: **The release number %s is unable to be promoted to Production!** \n", token) +
		"_Possible Solutions:_ \n" +
		"  - Please ensure the release has gone through the lifecycle to reach Production and is in the correct channel. \n"
}

func scheduledText(header string) string {
	return header +
		"Status: **Successfully assigned ServiceNow item and scheduled deployment in Octopus Deploy.** \n" +
		"_No further action needed._ \n"
}

func scheduleFailedText(header string) string {
	return header +
		"Status: **FAILED to schedule deployment in Octopus Deploy.** \n" +
		"_Possible Solutions:_ \n" +
		"  - Verify that at minimum five minutes of lead time were allotted. \n" +
		"  - Verify that the date and time on the ServiceNow item are correct. \n" +
		"  - Verify that the Octopus Deploy server is up and running. \n"
}

func orphanCanceledText(d octopus.ServerTask) string {
	return fmt.Sprintf("Deployment **%s** was cancelled because no Change Task matches its deployment info. \n", d.Description) +
		"  - If a Change Task was pulled and then returned to the queue it will be rescheduled automatically within two run cycles. \n" +
		"  - If the deployment time or release number on the Change Task changed it will be rescheduled automatically. \n" +
		"_No further action needed._ \n"
}

func orphanCancelFailedText(d octopus.ServerTask) string {
	return fmt.Sprintf("**%s** has no associated Change Task. Attempted to cancel but encountered an error. \n", d.Description) +
		"_Possible Solutions:_ \n" +
		"  - Associate a Change Task with this release. \n" +
		"  - Cancel the deployment manually. \n"
}
