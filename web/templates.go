package web

import "html/template"

func newTemplates() *template.Template {
	return template.Must(template.New("page").Parse(pageTemplate))
}

const pageTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Tasks · {{.ActiveTab}}</title>
  <style>
    body {
      margin: 0;
      font-family: "Charter", "Georgia", serif;
      color: #2b2520;
      background: radial-gradient(circle at top left, #f4efe3 0%, #fcfaf6 55%, #f6f2e8 100%);
    }
    header {
      padding: 16px 24px;
      border-bottom: 1px solid #d7cdbd;
      background: rgba(255, 255, 255, 0.72);
    }
    header h1 { margin: 0 0 8px 0; font-size: 20px; }
    .tabs { display: flex; gap: 12px; }
    .tab {
      padding: 8px 14px;
      border-radius: 999px;
      text-decoration: none;
      color: #5b5148;
      border: 1px solid transparent;
    }
    .tab.active { color: #1d1712; border-color: #d1c6b6; background: #f5efe4; font-weight: 600; }
    main { display: flex; gap: 18px; padding: 18px 24px 28px; }
    .pane { background: #ffffff; border: 1px solid #d7cdbd; border-radius: 14px; padding: 16px; }
    .list-pane { width: 35%; min-width: 240px; }
    .detail-pane { flex: 1; }
    .item-list { list-style: none; padding: 0; margin: 0; }
    .list-item a { display: block; padding: 10px 12px; border-radius: 10px; text-decoration: none; color: inherit; }
    .list-item.active a { background: #f6f0e6; }
    .item-meta { display: block; font-size: 13px; color: #7a6d61; }
    .error { padding: 8px 12px; border-radius: 8px; background: #fbe9e4; color: #8a2b17; margin-bottom: 12px; }
    table { border-collapse: collapse; width: 100%; }
    th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #eee5d8; }
    label { display: block; margin-top: 10px; font-size: 14px; }
    input, select, textarea { width: 100%; box-sizing: border-box; padding: 6px; }
    textarea { min-height: 120px; }
    .button-link { display: inline-block; margin-top: 12px; padding: 6px 12px; border-radius: 8px; border: 1px solid #cbbfae; background: #f7f2e8; color: #2b2520; text-decoration: none; }
  </style>
</head>
<body>
  <header>
    <h1>Tasks</h1>
    <nav class="tabs">
      <a class="tab {{if eq .ActiveTab "tasks"}}active{{end}}" href="/web/tasks">Tasks</a>
      <a class="tab {{if eq .ActiveTab "epics"}}active{{end}}" href="/web/epics">Epics</a>
      <a class="tab {{if eq .ActiveTab "schedule"}}active{{end}}" href="/web/schedule">Schedule</a>
    </nav>
  </header>
  <main>
    {{if eq .ActiveTab "schedule"}}
      <section class="pane detail-pane">
        {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
        {{template "rows" .Rows}}
      </section>
    {{else}}
      <section class="pane list-pane">
        {{if eq .ActiveTab "tasks"}}<a class="button-link" href="/web/tasks?create=1">New task</a>{{end}}
        <ul class="item-list">
          {{range .Rows}}
            <li class="list-item {{if eq .ID $.SelectedID}}active{{end}}">
              <a href="/web/{{$.ActiveTab}}?id={{.ID}}">
                <span class="item-title">{{.Title}}</span>
                <span class="item-meta">{{.ID}} · {{.Status}}</span>
              </a>
            </li>
          {{else}}
            <li class="item-meta">Nothing here yet.</li>
          {{end}}
        </ul>
      </section>
      <section class="pane detail-pane">
        {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
        {{if eq .ActiveTab "epics"}}
          {{with .Selected}}
            <h2>{{.Title}}</h2>
            <p class="item-meta">Epic {{.ID}} · {{.Status}} · {{.Duration}} · {{.Window}}</p>
            {{if .Description}}<p>{{.Description}}</p>{{end}}
          {{end}}
          {{if .Subtasks}}{{template "rows" .Subtasks}}{{else if .Selected}}<p class="item-meta">No subtasks.</p>{{end}}
        {{else if .Create}}
          <h2>New task</h2>
          <form method="post" action="/web/tasks/create">
            {{template "fields" .}}
            <button class="button-link" type="submit">Create</button>
          </form>
        {{else if .Selected}}
          <h2>Task {{.Selected.ID}}</h2>
          <p class="item-meta">Ends {{.Selected.End}}</p>
          <form method="post" action="/web/tasks/update?id={{.Selected.ID}}">
            {{template "fields" .}}
            <button class="button-link" type="submit">Save</button>
          </form>
        {{end}}
      </section>
    {{end}}
  </main>
</body>
</html>
{{define "fields"}}
  <label for="task-title">Title</label>
  <input id="task-title" type="text" name="title" value="{{.TaskForm.Title}}">
  <label for="task-status">Status</label>
  <select id="task-status" name="status">
    {{range .StatusOptions}}
      <option value="{{.}}" {{if eq . $.TaskForm.Status}}selected{{end}}>{{.}}</option>
    {{end}}
  </select>
  <label for="task-duration">Duration (minutes)</label>
  <input id="task-duration" type="number" min="1" name="duration" value="{{.TaskForm.Duration}}">
  <label for="task-start">Start</label>
  <input id="task-start" type="datetime-local" name="start" value="{{.TaskForm.Start}}">
  <label for="task-description">Description</label>
  <textarea id="task-description" name="description">{{.TaskForm.Description}}</textarea>
{{end}}
{{define "rows"}}
  <table>
    <thead><tr><th>ID</th><th>Kind</th><th>Title</th><th>Status</th><th>Duration</th><th>Start</th><th>End</th></tr></thead>
    <tbody>
      {{range .}}
        <tr><td>{{.ID}}</td><td>{{.Kind}}</td><td>{{.Title}}</td><td>{{.Status}}</td><td>{{.Duration}}</td><td>{{.Start}}</td><td>{{.End}}</td></tr>
      {{else}}
        <tr><td colspan="7">Nothing scheduled.</td></tr>
      {{end}}
    </tbody>
  </table>
{{end}}
`
