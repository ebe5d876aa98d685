package web

const tmplBase = `
{{define "base"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
{{if .Refresh}}<meta http-equiv="refresh" content="{{.Refresh}}">{{end}}
<title>BLOCC Dashboard</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:'JetBrains Mono',monospace,sans-serif;background:#0d1117;color:#c9d1d9;font-size:13px;line-height:1.5}
a{color:#58a6ff;text-decoration:none}
a:hover{text-decoration:underline}
nav{background:#161b22;border-bottom:1px solid #30363d;padding:8px 16px;display:flex;gap:16px;align-items:center}
nav .brand{color:#f0f6fc;font-weight:700;font-size:15px}
main{padding:16px}
h1{font-size:16px;font-weight:700;color:#f0f6fc;margin-bottom:12px}
.cards{display:flex;gap:12px;flex-wrap:wrap;margin-bottom:16px}
.card{background:#161b22;border:1px solid #30363d;border-radius:6px;padding:12px 16px;min-width:140px}
.card .val{font-size:18px;font-weight:700}
.card .lbl{font-size:11px;color:#8b949e;margin-top:2px}
.status-error .val{color:#f87171}
.status-success .val{color:#56d364}
.status-warning .val{color:#f59e0b}
.status-secondary .val{color:#8b949e}
table{width:100%;border-collapse:collapse;font-size:12px}
th{text-align:left;padding:6px 10px;border-bottom:1px solid #30363d;color:#8b949e;font-weight:600;font-size:11px;text-transform:uppercase}
td{padding:5px 10px;border-bottom:1px solid #21262d}
tr:hover td{background:#161b22}
td.approvals-cell.green{background:#1a7f37;color:#f0f6fc}
td.approvals-cell.yellow{background:#9a6700;color:#f0f6fc}
td.approvals-cell.red{background:#a40e26;color:#f0f6fc}
.section{background:#161b22;border:1px solid #30363d;border-radius:6px;margin-bottom:16px;overflow:hidden}
.section-hdr{padding:8px 12px;border-bottom:1px solid #30363d;font-size:11px;font-weight:600;color:#8b949e;text-transform:uppercase;background:#0d1117}
.section-body{padding:12px}
.banner{padding:8px 12px;border-radius:6px;margin-bottom:12px;background:#3d1418;border:1px solid #f87171;color:#f87171}
.dim{color:#8b949e}
.mono{font-family:monospace;font-size:11px;color:#79c0ff}
form{display:flex;gap:8px;flex-wrap:wrap;align-items:end;margin-bottom:12px}
label{display:flex;flex-direction:column;font-size:11px;color:#8b949e}
input,select,button{background:#0d1117;color:#c9d1d9;border:1px solid #30363d;border-radius:4px;padding:4px 6px;font:inherit}
.pager{display:flex;gap:12px;margin-top:8px}
</style>
</head>
<body>
<nav><a class="brand" href="/">BLOCC Dashboard</a><a href="/metrics">metrics</a></nav>
<main>{{template "content" .}}</main>
</body>
</html>{{end}}
`

const tmplDashboard = `
{{define "content"}}
<h1>Container fork status</h1>
<div class="cards">
{{range .Forks}}
<div class="card status-{{.Appearance.Color}}" title="{{.Appearance.Tooltip}}{{if .Error}}: {{.Error}}{{end}}">
<div class="val">{{glyph .Appearance.Icon}} {{.Appearance.Tooltip}}</div>
<div class="lbl">Container {{.ContainerNum}} · {{fmtTime .UpdatedAt}}</div>
</div>
{{end}}
</div>

<div class="section">
<div class="section-hdr">Temperature readings · Container {{.SeriesContainer}}</div>
<div class="section-body">
<form method="get" action="/">
<label>Container
<select name="series">
{{range .Containers}}<option value="{{.}}"{{if eq . $.SeriesContainer}} selected{{end}}>Container {{.}}</option>{{end}}
</select>
</label>
<button type="submit">Show</button>
</form>
{{if .Readings.Error}}<div class="banner">{{.Readings.Error}}</div>{{end}}
{{if .Readings.Loading}}<p class="dim">Loading readings…</p>
{{else if .Readings.Chart}}<img src="/chart/readings.png?v={{.Readings.Version}}" alt="Temperature readings" width="960" height="360">
{{else}}<p class="dim">Not enough readings in the window ({{.Readings.Count}}).</p>{{end}}
</div>
</div>

<div class="section">
<div class="section-hdr">Sensor chaincode transactions</div>
<div class="section-body">
<form method="get" action="/">
<input type="hidden" name="filter" value="1">
<label>Container
<select name="containerNum">
<option value="">All</option>
{{range .Containers}}<option value="{{.}}"{{if eq (itoa .) $.Form.ContainerNum}} selected{{end}}>Container {{.}}</option>{{end}}
</select>
</label>
<label>Start<input type="datetime-local" step="1" name="start" value="{{.Form.Start}}"></label>
<label>End<input type="datetime-local" step="1" name="end" value="{{.Form.End}}"></label>
<label>Approval window (s)<input type="number" min="0" name="approvalWindow" value="{{.Form.ApprovalWindow}}"></label>
<button type="submit">Apply</button>
<a href="/?filter=1">Clear</a>
</form>
{{if .FormError}}<div class="banner">{{.FormError}}</div>{{end}}
{{if .Table.Error}}<div class="banner">{{.Table.Error}}</div>{{end}}
{{if .Table.Loading}}<p class="dim">Loading transactions…</p>
{{else}}
<table>
<thead><tr><th>Transaction ID</th><th>Creator MSP ID</th><th>Created At</th><th>Temperature (°C)</th><th>Approvals</th></tr></thead>
<tbody>
{{range .Table.Rows}}
<tr>
<td class="mono"><a href="/transactions/{{.TxID}}">{{.TxID}}</a></td>
<td>{{.Creator}}</td>
<td>{{.CreatedAt}}</td>
<td>{{.Temperature}}</td>
<td class="approvals-cell {{.Color}}">{{.Approvals}}</td>
</tr>
{{else}}
<tr><td colspan="5" class="dim">No transactions</td></tr>
{{end}}
</tbody>
</table>
<div class="pager">
{{if .Table.PrevURL}}<a href="{{.Table.PrevURL}}">« prev</a>{{end}}
<span class="dim">page {{.Table.Page}} of {{.Table.Pages}} · {{.Table.Total}} rows</span>
{{if .Table.NextURL}}<a href="{{.Table.NextURL}}">next »</a>{{end}}
</div>
{{end}}
</div>
</div>
{{end}}
`

const tmplTransaction = `
{{define "content"}}
<h1>Sensor chaincode transaction</h1>
<div class="section">
<div class="section-hdr">Details</div>
<div class="section-body">
<table>
<tr><th>Transaction ID</th><td class="mono">{{.Tx.TxID}}</td></tr>
<tr><th>Creator MSP ID</th><td>{{.Tx.Creator}}</td></tr>
<tr><th>Container</th><td>{{.Tx.ContainerNum}}</td></tr>
<tr><th>Created At</th><td>{{.CreatedAt}}</td></tr>
<tr><th>Temperature (°C)</th><td>{{.Tx.Reading.Temperature}}</td></tr>
<tr><th>Relative humidity</th><td>{{.Tx.Reading.RelativeHumidity}}</td></tr>
<tr><th>Reading taken at</th><td>{{.ReadingAt}}</td></tr>
</table>
</div>
</div>

<div class="section">
<div class="section-hdr">Approval transactions · {{len .Approvals}}</div>
<table>
<thead><tr><th>Transaction ID</th><th>Approved By</th><th>Created At</th><th>Delay (s)</th></tr></thead>
<tbody>
{{range .Approvals}}
<tr><td class="mono">{{.TxID}}</td><td>{{.Creator}}</td><td>{{.CreatedAt}}</td><td>{{.Delay}}</td></tr>
{{else}}
<tr><td colspan="4" class="dim">No approvals</td></tr>
{{end}}
</tbody>
</table>
</div>
<p><a href="/">« back to dashboard</a></p>
{{end}}
`
