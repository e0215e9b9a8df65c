package http

import (
	"bytes"
	"html/template"
	"net/http"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Flight Delay Prediction</title>
<style>
body { font-family: sans-serif; max-width: 40rem; margin: 2rem auto; }
label { display: block; margin-top: .5rem; }
button { margin-top: 1rem; padding: .5rem 1.5rem; }
#result { margin-top: 1rem; font-weight: bold; }
</style>
</head>
<body>
<h1>Flight Delay Prediction</h1>
<form id="predict">
<label>Model
<select name="model">{{range .Models}}
<option value="{{.ID}}"{{if .Loaded}} selected{{end}}>{{.Name}}</option>{{end}}
</select>
</label>
<button type="button" id="load">Load Model</button>
{{range .Numeric}}
<label>{{.Name}} <input type="number" step="any" name="{{.Name}}" value="{{.Default}}"></label>{{end}}
<label>Date <input type="date" name="date" value="{{.DefaultDate}}"></label>
<label>Airline
<select name="airline">{{range .Airlines}}
<option>{{.}}</option>{{end}}
</select>
</label>
<label>Departure Type
<select name="departure_type">{{range .AirportTypes}}
<option>{{.}}</option>{{end}}
</select>
</label>
<label>Arrival Type
<select name="arrival_type">{{range .AirportTypes}}
<option>{{.}}</option>{{end}}
</select>
</label>
<button type="submit">Predict</button>
</form>
<div id="result"></div>
<script>
const form = document.getElementById("predict");
const out = document.getElementById("result");
const numeric = [{{range $i, $f := .Numeric}}{{if $i}}, {{end}}{{$f.Name}}{{end}}];

async function call(url, body) {
  const res = await fetch(url, {method: "POST", headers: {"Content-Type": "application/json"}, body: body});
  const data = await res.json();
  if (!res.ok) throw new Error(data.error);
  return data;
}

document.getElementById("load").onclick = async () => {
  try {
    const m = await call("/api/models/" + form.model.value + "/load", "{}");
    out.textContent = m.name + " loaded successfully!";
  } catch (e) { out.textContent = e.message; }
};

form.onsubmit = async (ev) => {
  ev.preventDefault();
  const req = {
    model: form.model.value,
    numeric: {},
    date: form.date.value,
    airline: form.airline.value,
    departure_type: form.departure_type.value,
    arrival_type: form.arrival_type.value,
  };
  for (const name of numeric) req.numeric[name] = parseFloat(form.elements[name].value);
  try {
    const p = await call("/api/predict", JSON.stringify(req));
    out.textContent = "Predicted delay: " + p.minutes.toFixed(1) + " minutes";
  } catch (e) { out.textContent = e.message; }
};
</script>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, s.predictor.Schema()); err != nil {
		s.logger.Error("render index", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}
