package dashboard

import (
	"html/template"

	"github.com/rileyhilliard/pch/internal/analysis"
	"github.com/rileyhilliard/pch/internal/history"
	"github.com/rileyhilliard/pch/internal/monitor"
)

// indexData feeds the "index" template.
type indexData struct {
	Version string
	Backend string
	Limit   int
	Entries []history.Entry
}

var templateFuncs = template.FuncMap{
	"when": func(ts history.Timestamp) string {
		return ts.Local().Format(monitor.ReportTimeLayout)
	},
	"status": func(text string) string {
		s := analysis.ParseStatus(text)
		if s == analysis.StatusUnknown {
			return "unknown"
		}
		return string(s)
	},
}

var pageTemplates = template.Must(template.New("").Funcs(templateFuncs).Parse(`
{{define "index"}}<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>PC Health Analyzer</title>
{{template "styles"}}
</head>
<body>
<header>
  <h1>PC Health Analyzer</h1>
  <div class="meta">{{if .Version}}pch {{.Version}}{{end}}{{if .Backend}} &middot; backend {{.Backend}}{{end}}</div>
</header>

<section class="actions">
  <button id="check">Check now</button>
  <button id="analyze">Analyze</button>
  <span id="busy" class="busy" hidden>working&hellip;</span>
</section>

<section class="panels">
  <div class="panel">
    <h2>Report</h2>
    <pre id="report">No check yet. Click "Check now".</pre>
    <iframe id="gauges" src="/api/gauges" title="Gauges"></iframe>
  </div>
  <div class="panel">
    <h2>Analysis</h2>
    <pre id="analysis" class="status-unknown">Run a check, then Analyze.</pre>
    <div id="error" class="error" hidden></div>
  </div>
</section>

<section class="history">
  <h2>Recent history <button id="clear" class="small">Clear history</button></h2>
  <ul id="history">
  {{range .Entries}}
    <li class="status-{{status .Analysis}}"><time>{{when .Timestamp}}</time><pre>{{.Analysis}}</pre></li>
  {{else}}
    <li class="empty">No analyses saved yet.</li>
  {{end}}
  </ul>
</section>

<script>
const limit = {{.Limit}};
const $ = (id) => document.getElementById(id);
let pending = 0;

function busy(delta) {
  pending += delta;
  $("busy").hidden = pending === 0;
}

function showError(err) {
  const box = $("error");
  if (!err) { box.hidden = true; box.textContent = ""; return; }
  box.textContent = err.message + (err.suggestion ? " (" + err.suggestion + ")" : "");
  box.hidden = false;
}

async function call(method, url, button) {
  if (button) button.disabled = true;
  busy(1);
  try {
    const resp = await fetch(url, {method: method, credentials: "same-origin"});
    return await resp.json();
  } catch (e) {
    return {success: false, error: {message: String(e)}};
  } finally {
    busy(-1);
    if (button) button.disabled = false;
  }
}

function statusClass(text) {
  const m = /status\s*:\s*\**\[?\s*(good|warning|critical)/i.exec(text || "");
  return "status-" + (m ? m[1][0].toUpperCase() + m[1].slice(1).toLowerCase() : "unknown");
}

async function loadHistory() {
  const env = await call("GET", "/api/history?limit=" + limit);
  if (!env.success) return;
  const list = $("history");
  list.innerHTML = "";
  const entries = (env.data.entries || []).slice().reverse();
  if (entries.length === 0) {
    const li = document.createElement("li");
    li.className = "empty";
    li.textContent = "No analyses saved yet.";
    list.appendChild(li);
    return;
  }
  for (const e of entries) {
    const li = document.createElement("li");
    li.className = statusClass(e.analysis);
    const t = document.createElement("time");
    t.textContent = new Date(e.timestamp).toLocaleString();
    const pre = document.createElement("pre");
    pre.textContent = e.analysis;
    li.append(t, pre);
    list.appendChild(li);
  }
}

$("check").onclick = async () => {
  const env = await call("POST", "/api/check", $("check"));
  if (!env.success) { showError(env.error); return; }
  showError(null);
  $("report").textContent = env.data.text;
  $("gauges").src = "/api/gauges?t=" + Date.now();
};

$("analyze").onclick = async () => {
  const env = await call("POST", "/api/analyze", $("analyze"));
  if (env.data && env.data.analysis) {
    $("analysis").textContent = env.data.analysis;
    $("analysis").className = statusClass(env.data.analysis);
  }
  showError(env.success ? null : env.error);
};

$("clear").onclick = async () => {
  if (!confirm("Delete all saved analyses?")) return;
  const env = await call("DELETE", "/api/history", $("clear"));
  showError(env.success ? null : env.error);
  loadHistory();
};

(function connect() {
  const proto = location.protocol === "https:" ? "wss://" : "ws://";
  const ws = new WebSocket(proto + location.host + "/ws/events");
  ws.onmessage = (msg) => {
    const ev = JSON.parse(msg.data);
    if (ev.type === "history_changed") loadHistory();
  };
  ws.onclose = () => setTimeout(connect, 3000);
})();
</script>
</body>
</html>
{{end}}

{{define "no_gauges"}}<!DOCTYPE html>
<html><head><meta charset="UTF-8">{{template "styles"}}</head>
<body><p class="empty">Run a check to see gauges.</p></body></html>
{{end}}

{{define "styles"}}
<style>
* { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif; }
body { max-width: 1100px; margin: 0 auto; padding: 20px; color: #1f2937; }
header { border-bottom: 2px solid #333; margin-bottom: 16px; }
header h1 { margin: 0; font-size: 20px; }
.meta { font-size: 12px; color: #6b7280; font-family: monospace; padding: 4px 0 8px; }
.actions { display: flex; gap: 8px; align-items: center; margin-bottom: 16px; }
button { padding: 6px 14px; border: 1px solid #d1d5db; background: #f9fafb; cursor: pointer; }
button:disabled { opacity: .5; cursor: wait; }
button.small { font-size: 11px; padding: 2px 8px; margin-left: 8px; }
.busy { color: #6b7280; font-style: italic; }
.panels { display: grid; grid-template-columns: 1fr 1fr; gap: 16px; }
.panel { border: 1px solid #e5e7eb; background: #f9fafb; padding: 12px; }
.panel h2, .history h2 { font-size: 15px; margin: 0 0 8px; }
pre { white-space: pre-wrap; font-family: monospace; font-size: 13px; margin: 0; }
iframe { width: 100%; height: 360px; border: 0; }
.error { color: #b91c1c; margin-top: 8px; font-size: 13px; }
.history ul { list-style: none; padding: 0; }
.history li { border-left: 4px solid #9ca3af; padding: 6px 10px; margin-bottom: 8px; background: #f9fafb; }
.history time { font-size: 11px; color: #6b7280; }
.status-Good { border-color: #22c55e !important; }
.status-Warning { border-color: #eab308 !important; }
.status-Critical { border-color: #ef4444 !important; }
#analysis { border-left: 4px solid #9ca3af; padding-left: 8px; }
.empty { color: #6b7280; }
</style>
{{end}}
`))
