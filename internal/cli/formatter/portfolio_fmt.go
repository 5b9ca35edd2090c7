package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/portfolio/internal/capacity"
	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/effort"
	"github.com/alexanderramin/portfolio/internal/permission"
)

// FormatEffort shows weeks with the day and hour equivalents.
func FormatEffort(weeks float64, conv effort.Converter) string {
	return fmt.Sprintf("%sw %s", domain.FormatEffort(weeks),
		Dim(fmt.Sprintf("(%sd / %sh)",
			strconv.FormatFloat(conv.WeeksToDays(weeks), 'f', 1, 64),
			strconv.FormatFloat(conv.WeeksToHours(weeks), 'f', 0, 64))))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatInitiativeList renders one row per initiative.
func FormatInitiativeList(items []*domain.Initiative, today time.Time) string {
	t := Table{
		Headers: []string{"ID", "TITLE", "OWNER", "STATUS", "PRI", "EST", "ACT", "ETA", "DONE"},
		Right:   []int{5, 6},
	}
	for _, i := range items {
		t.Rows = append(t.Rows, []string{
			Dim(shortID(i.ID)),
			i.Title,
			orDash(i.OwnerID),
			StatusBadge(i.Status),
			PriorityStyle(i.Priority).Render(string(i.Priority)),
			domain.FormatEffort(i.EstimatedEffort),
			domain.FormatEffort(i.ActualEffort),
			ETAStyled(i.ETA, i.Status, today),
			RenderCompletion(i.CompletionRate, 10),
		})
	}
	return t.Render()
}

// FormatInitiative renders the detail view with tasks and recent comments.
func FormatInitiative(i *domain.Initiative, conv effort.Converter, today time.Time) string {
	var b strings.Builder
	field := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", StyleDim.Render(fmt.Sprintf("%-16s", label)), value)
	}

	field("ID", i.ID)
	field("Owner", orDash(i.OwnerID))
	if i.SecondaryOwner != "" {
		field("Secondary owner", i.SecondaryOwner)
	}
	field("Hierarchy", strings.Join([]string{orDash(i.AssetClass), orDash(i.Pillar), orDash(i.Responsibility), orDash(i.Target)}, " › "))
	field("Quarter", orDash(i.Quarter))
	field("Status", StatusBadge(i.Status))
	field("Priority", PriorityStyle(i.Priority).Render(string(i.Priority)))
	field("Work type", string(i.WorkType))
	field("Estimated", FormatEffort(i.EstimatedEffort, conv))
	field("Actual", FormatEffort(i.ActualEffort, conv))
	field("Original est.", FormatEffort(i.OriginalEstimatedEffort, conv))
	field("ETA", fmt.Sprintf("%s %s", orDash(i.ETA), ETAStyled(i.ETA, i.Status, today)))
	field("Original ETA", orDash(i.OriginalETA))
	field("Completion", fmt.Sprintf("%s %d%%", RenderCompletion(i.CompletionRate, 20), i.CompletionRate))
	field("Last updated", orDash(i.LastUpdated))

	var live []domain.Task
	for _, t := range i.Tasks {
		if !t.IsDeleted() {
			live = append(live, t)
		}
	}
	if len(live) > 0 {
		b.WriteString("\n" + Header("Tasks") + "\n")
		t := Table{Headers: []string{"ID", "TITLE", "OWNER", "STATUS", "EST", "ACT", "ETA", "TAGS"}, Right: []int{4, 5}}
		for _, task := range live {
			tags := make([]string, len(task.Tags))
			for k, tag := range task.Tags {
				tags[k] = string(tag)
			}
			t.Rows = append(t.Rows, []string{
				Dim(shortID(task.ID)),
				orDash(task.Title),
				orDash(taskOwner(task)),
				StatusBadge(task.Status),
				domain.FormatEffort(task.EstimatedEffort),
				domain.FormatEffort(task.ActualEffort),
				ETAStyled(task.ETA, task.Status, today),
				strings.Join(tags, ","),
			})
		}
		b.WriteString(t.Render())
	}

	if len(i.Comments) > 0 {
		b.WriteString("\n" + Header("Comments") + "\n")
		for _, c := range i.Comments {
			fmt.Fprintf(&b, "%s %s\n  %s\n", Bold(c.AuthorID), Dim(c.Timestamp.Format(time.DateTime)), c.Text)
		}
	}
	return b.String()
}

func taskOwner(t domain.Task) string {
	return domain.CoalesceStr(t.Owner, t.OwnerID)
}

// FormatChanges renders change records oldest first.
func FormatChanges(recs []domain.ChangeRecord) string {
	t := Table{Headers: []string{"WHEN", "INITIATIVE", "TASK", "FIELD", "OLD", "NEW", "BY", "TRADE-OFF"}}
	for _, r := range recs {
		t.Rows = append(t.Rows, []string{
			Dim(r.Timestamp.Format(time.DateTime)),
			r.InitiativeTitle,
			orDash(shortID(r.TaskID)),
			string(r.Field),
			StyleRed.Render(orDash(r.OldValue)),
			StyleGreen.Render(orDash(r.NewValue)),
			r.ChangedBy,
			orDash(shortID(r.TradeOffSourceID)),
		})
	}
	return t.Render()
}

// FormatCapacityReport renders per-owner rows followed by team totals.
func FormatCapacityReport(rep capacity.Report) string {
	t := Table{
		Headers: []string{"OWNER", "BASE", "ADJ", "BUFFER", "SUGGESTED", "EFFECTIVE", "EST", "ACT", "UTILIZATION"},
		Right:   []int{1, 2, 3, 4, 5, 6, 7},
	}
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
	for _, r := range rep.Rows {
		t.Rows = append(t.Rows, []string{
			r.OwnerID,
			num(r.Base),
			num(r.Adjustment),
			num(r.Buffer),
			num(r.SuggestedBuffer),
			num(r.Effective),
			num(r.Estimated),
			num(r.Actual),
			RenderUtilization(r.Utilization, 20),
		})
	}

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", StyleDim.Render("Utilization    "), RenderUtilization(rep.Utilization, 20))
	fmt.Fprintf(&b, "%s %s\n", StyleDim.Render("Efficiency     "), rep.Efficiency)
	fmt.Fprintf(&b, "%s %s\n", StyleDim.Render("Unplanned      "), rep.UnplannedRatio)
	fmt.Fprintf(&b, "%s %s\n", StyleDim.Render("Buffer health  "), LevelStyle(rep.BufferHealth.Level()).Render(rep.BufferHealth.String()))
	return b.String()
}

// FormatPermissionMatrix renders roles as rows and capabilities as columns,
// using resolved values so missing cells show their effective default.
func FormatPermissionMatrix(rp domain.RolePermissions) string {
	r := permission.NewResolver(rp)
	headers := []string{"ROLE"}
	for _, k := range domain.PermissionKeys {
		headers = append(headers, string(k))
	}
	t := Table{Headers: headers}
	for _, role := range domain.Roles {
		row := []string{string(role)}
		for _, k := range domain.PermissionKeys {
			row = append(row, permissionCell(r.Resolve(role, k)))
		}
		t.Rows = append(t.Rows, row)
	}
	return t.Render()
}

func permissionCell(v domain.PermissionValue) string {
	switch v {
	case domain.PermEdit, domain.PermYes:
		return StyleGreen.Render(string(v))
	case domain.PermView, domain.PermOwn:
		return StyleYellow.Render(string(v))
	default:
		return StyleDim.Render(string(v))
	}
}

func FormatUsers(users []*domain.User) string {
	t := Table{Headers: []string{"ID", "NAME", "EMAIL", "ROLE", "TEAM"}}
	for _, u := range users {
		t.Rows = append(t.Rows, []string{Dim(shortID(u.ID)), u.Name, u.Email, string(u.Role), orDash(u.Team)})
	}
	return t.Render()
}

// FormatNotifications renders newest first as given; unread rows are bold.
func FormatNotifications(notes []domain.Notification) string {
	t := Table{Headers: []string{"ID", "WHEN", "TYPE", "INITIATIVE", "MESSAGE"}}
	for _, n := range notes {
		msg := n.Message
		if !n.Read {
			msg = Bold(msg)
		}
		t.Rows = append(t.Rows, []string{
			Dim(shortID(n.ID)),
			Dim(n.Timestamp.Format(time.DateTime)),
			string(n.Type),
			n.InitiativeTitle,
			msg,
		})
	}
	return t.Render()
}
