package handlers

import (
	"html/template"
	"net/http"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
)

// DashboardHandler renders the single-page dashboard. All data flows
// through the JSON API; the page itself is static.
type DashboardHandler struct {
	instrument contracts.Instrument
	tmpl       *template.Template
	logger     *logger.Logger
}

// NewDashboardHandler creates the dashboard handler.
func NewDashboardHandler(instrument contracts.Instrument, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		instrument: instrument,
		tmpl:       template.Must(template.New("dashboard").Parse(dashboardHTML)),
		logger:     log,
	}
}

// Home renders the dashboard page.
// GET /
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.Execute(w, h.instrument); err != nil {
		h.logger.WithError(err).Error("Dashboard render failed")
	}
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="zh">
<head>
<meta charset="utf-8">
<title>{{.Name}}（{{.ID}}）周线交易系统</title>
<style>
body { background: #f5f5f5; font-family: "Helvetica Neue", Arial, sans-serif; margin: 0 auto; max-width: 1100px; padding: 20px; color: #333; }
h1 { font-size: 22px; }
.controls { background: #fff; border-radius: 8px; padding: 16px; margin-bottom: 16px; }
.controls label { margin-right: 6px; }
.controls input { width: 110px; margin-right: 16px; padding: 4px 6px; }
button { background: #7d9b87; color: #fff; border: none; border-radius: 6px; padding: 8px 18px; cursor: pointer; }
button:disabled { background: #b8c4bc; }
#status { margin: 10px 0; color: #666; }
.summary { display: flex; gap: 12px; margin-bottom: 16px; flex-wrap: wrap; }
.card { background: #fff; border-radius: 8px; padding: 12px 18px; min-width: 130px; }
.card .label { font-size: 12px; color: #888; }
.card .value { font-size: 20px; margin-top: 4px; }
table { width: 100%; border-collapse: collapse; background: #fff; border-radius: 8px; overflow: hidden; }
th, td { padding: 8px 10px; text-align: right; font-size: 14px; border-bottom: 1px solid #eee; }
th:first-child, td:first-child { text-align: left; }
tr.pass { background: #d8e3dc; }
tr.realtime td { font-weight: bold; }
.fail-reason { color: #a05252; font-size: 12px; text-align: left; }
</style>
</head>
<body>
<h1>{{.Name}}（{{.ID}}）周线交易系统</h1>

<div class="controls">
	<label>买入成本（元）</label><input id="cost" type="number" step="0.001" min="0">
	<label>买入数量（份）</label><input id="qty" type="number" step="100" min="0">
	<button id="refresh">同步最新数据</button>
</div>

<div id="status">尚未同步，点击按钮获取最新数据。</div>
<div class="summary" id="summary"></div>
<table id="report" style="display:none">
	<thead>
		<tr>
			<th>时间</th><th>收盘价</th><th>溢价率%</th><th>M20</th>
			<th>站上M20</th><th>M20向上</th><th>盈亏%</th><th>M20处盈亏%</th>
			<th>综合判定</th><th class="fail-reason">原因</th>
		</tr>
	</thead>
	<tbody></tbody>
</table>

<script>
const statusEl = document.getElementById('status');
const tableEl = document.getElementById('report');
const summaryEl = document.getElementById('summary');
const btn = document.getElementById('refresh');

function fmt(value, has) {
	return has === false ? '-' : value.toFixed(3);
}

function fmt2(value, has) {
	return has === false ? '-' : value.toFixed(2);
}

function yesNo(v) { return v ? '✅' : '❌'; }

function card(label, value) {
	return '<div class="card"><div class="label">' + label + '</div><div class="value">' + value + '</div></div>';
}

function render(report) {
	if (report.status === 'unavailable') {
		statusEl.textContent = '数据不可用：' + report.status_reason;
		tableEl.style.display = 'none';
		summaryEl.innerHTML = '';
		return;
	}

	statusEl.textContent = '生成时间 ' + new Date(report.generated_at).toLocaleString() +
		(report.status === 'degraded' ? '（部分数据缺失：' + report.status_reason + '）' : '');

	const s = report.summary;
	summaryEl.innerHTML =
		card('现价', fmt(s.price, true)) +
		card('溢价率%', fmt(s.premium_pct, s.has_premium)) +
		card('M20', fmt(s.m20, s.has_m20)) +
		card('当前判定', s.passed ? '✅ 可操作' : '❌ 不满足');

	const tbody = tableEl.querySelector('tbody');
	tbody.innerHTML = '';
	for (const rec of report.records) {
		const tr = document.createElement('tr');
		if (rec.passed) tr.classList.add('pass');
		if (rec.is_realtime) tr.classList.add('realtime');
		tr.innerHTML =
			'<td>' + rec.period_label + (rec.is_realtime ? '（实时）' : '') + '</td>' +
			'<td>' + fmt(rec.price, true) + '</td>' +
			'<td>' + fmt(rec.premium_pct, rec.has_premium) + '</td>' +
			'<td>' + fmt(rec.m20, rec.has_m20) + '</td>' +
			'<td>' + yesNo(rec.above_m20) + '</td>' +
			'<td>' + yesNo(rec.m20_trending) + '</td>' +
			'<td>' + fmt2(rec.profit_pct, rec.has_profit) + '</td>' +
			'<td>' + fmt2(rec.profit_vs_m20_pct, rec.has_profit_vs_m20) + '</td>' +
			'<td>' + (rec.passed ? '✅' : '❌') + '</td>' +
			'<td class="fail-reason">' + rec.failure_reasons.join(', ') + '</td>';
		tbody.appendChild(tr);
	}
	tableEl.style.display = '';
}

async function load() {
	const resp = await fetch('/api/report');
	if (resp.ok) render(await resp.json());
}

btn.addEventListener('click', async () => {
	btn.disabled = true;
	statusEl.textContent = '正在同步数据，请稍等...';
	try {
		const params = new URLSearchParams();
		const cost = document.getElementById('cost').value;
		const qty = document.getElementById('qty').value;
		if (cost) params.set('cost', cost);
		if (qty) params.set('qty', qty);
		const resp = await fetch('/api/report/refresh?' + params, { method: 'POST' });
		if (!resp.ok) {
			const body = await resp.json();
			statusEl.textContent = '同步失败：' + body.error;
			return;
		}
		render(await resp.json());
	} finally {
		btn.disabled = false;
	}
});

const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
ws.onmessage = (e) => render(JSON.parse(e.data));

load();
</script>
</body>
</html>
`
