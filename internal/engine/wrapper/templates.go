package wrapper

import "text/template"

const header = "// Code generated by verso. DO NOT EDIT.\n"

var dispatcherTemplate = template.Must(template.New("dispatcher").Parse(header + `
package {{.Package}};

import java.util.Collections;
import java.util.LinkedHashMap;
import java.util.Map;
import java.util.Set;

public final class {{.Class}} {
  /** Public surface implemented once per embedded revision. */
  public interface Impl {
{{- range .Operations}}
    {{.Returns}} {{.Name}}({{.Params}});
{{- end}}
  }

  private static final Map<String, Impl> REGISTRY;

  static {
    Map<String, Impl> registry = new LinkedHashMap<>();
{{- range .Bindings}}
    registry.put("{{.Revision}}", new {{.ImplClass}}());
{{- end}}
    REGISTRY = Collections.unmodifiableMap(registry);
  }

  private static volatile String active = "{{.Default}}";

  private {{.Class}}() {}

  /** Routes every subsequent call to the given revision. */
  public static void select(String revision) {
    if (!REGISTRY.containsKey(revision)) {
      throw new IllegalArgumentException(
          "Unknown revision " + revision + ", embedded revisions are " + REGISTRY.keySet());
    }
    active = revision;
  }

  /** Returns the embedded revisions, oldest first. */
  public static Set<String> revisions() {
    return REGISTRY.keySet();
  }

  /** Returns the revision calls are currently routed to. */
  public static String active() {
    return active;
  }
{{- range .Operations}}

  public static {{.Returns}} {{.Name}}({{.Params}}) {
    {{if not .Void}}return {{end}}REGISTRY.get(active).{{.Name}}({{.Args}});
  }
{{- end}}
}
`))

var bindingTemplate = template.Must(template.New("binding").Parse(header + `
package {{.Package}};

final class {{.ImplClass}} implements {{.Class}}.Impl {
{{- range $i, $m := .Methods}}
{{- if $i}}
{{end}}
  @Override
  public {{.Returns}} {{.Name}}({{.Params}}) {
{{- if .Supported}}
    {{if not .Void}}return {{end}}{{$.Target}}.{{.Name}}({{.Args}});
{{- else}}
    throw new UnsupportedOperationException("{{.Name}} is not available in revision {{$.Revision}}");
{{- end}}
  }
{{- end}}
}
`))

type method struct {
	Name    string
	Returns string
	Void    bool
	// Params is the parameter declaration list, Args the matching call arguments.
	Params string
	Args   string
}

type binding struct {
	Revision  string
	ImplClass string
}

type dispatcherData struct {
	Package    string
	Class      string
	Default    string
	Operations []method
	Bindings   []binding
}

type boundMethod struct {
	method
	Supported bool
}

type bindingData struct {
	Package   string
	Class     string
	ImplClass string
	Revision  string
	// Target is the fully qualified implementation class inside the revision namespace.
	Target  string
	Methods []boundMethod
}
