package main

import (
	"fmt"
	"io"
	"strings"
)

// --- Bash ---

func generateBash(w io.Writer, cmds []commandDef) error {
	var b strings.Builder

	b.WriteString("# bash completion for html2img\n")
	b.WriteString("_html2img() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", strings.Join(commandNames(cmds), " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"$cmd\" in\n")

	for _, cmd := range cmds {
		fmt.Fprintf(&b, "    %s)\n", cmd.Name)
		writeBashFlagValues(&b, cmd.Flags)
		if len(cmd.Flags) > 0 {
			b.WriteString("        if [[ \"$cur\" == -* ]]; then\n")
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", strings.Join(flagNames(cmd.Flags), " "))
			b.WriteString("            return\n")
			b.WriteString("        fi\n")
		}
		switch {
		case len(cmd.Args) > 0:
			b.WriteString("        if [[ ${COMP_CWORD} -eq 2 ]]; then\n")
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", strings.Join(cmd.Args, " "))
			b.WriteString("        fi\n")
		case cmd.TakesFiles:
			fmt.Fprintf(&b, "        COMPREPLY=(%s)\n", bashFileMatch(cmd.FilePattern))
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("complete -F _html2img html2img\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// writeBashFlagValues completes the value of the flag in $prev.
func writeBashFlagValues(b *strings.Builder, flags []flagDef) {
	var valued []flagDef
	for _, f := range flags {
		if f.Type != flagBool {
			valued = append(valued, f)
		}
	}
	if len(valued) == 0 {
		return
	}

	b.WriteString("        case \"$prev\" in\n")
	for _, f := range valued {
		fmt.Fprintf(b, "        %s)\n", strings.Join(flagForms(f), "|"))
		switch f.Type {
		case flagEnum:
			b.WriteString("            local IFS=$'\\n'\n")
			fmt.Fprintf(b, "            COMPREPLY=($(compgen -W $'%s' -- \"$cur\"))\n", strings.Join(f.Values, "\\n"))
		case flagFile:
			fmt.Fprintf(b, "            COMPREPLY=(%s)\n", bashFileMatch(f.FileGlob))
		case flagDir:
			b.WriteString("            COMPREPLY=($(compgen -d -- \"$cur\"))\n")
		}
		b.WriteString("            return\n")
		b.WriteString("            ;;\n")
	}
	b.WriteString("        esac\n")
}

// bashFileMatch returns compgen calls listing files that match glob, plus
// directories to descend into.
func bashFileMatch(glob string) string {
	exts := globExtensions(glob)
	if len(exts) == 0 {
		return "$(compgen -f -- \"$cur\")"
	}
	return fmt.Sprintf("$(compgen -f -X '!*.@(%s)' -- \"$cur\") $(compgen -d -- \"$cur\")", strings.Join(exts, "|"))
}

// --- Zsh ---

func generateZsh(w io.Writer, cmds []commandDef) error {
	var b strings.Builder

	b.WriteString("#compdef html2img\n\n")
	b.WriteString("_html2img() {\n")
	b.WriteString("    local line state\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, cmd := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", cmd.Name, zshEscape(cmd.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    _arguments -C \\\n")
	b.WriteString("        '1: :->command' \\\n")
	b.WriteString("        '*:: :->args'\n\n")
	b.WriteString("    case $state in\n")
	b.WriteString("    command)\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        ;;\n")
	b.WriteString("    args)\n")
	b.WriteString("        case $line[1] in\n")

	for _, cmd := range cmds {
		specs := make([]string, 0, len(cmd.Flags)+1)
		for _, f := range cmd.Flags {
			specs = append(specs, zshFlagSpec(f))
		}
		switch {
		case len(cmd.Args) > 0:
			specs = append(specs, fmt.Sprintf("'1:argument:(%s)'", strings.Join(cmd.Args, " ")))
		case cmd.TakesFiles:
			specs = append(specs, fmt.Sprintf("'*:file:%s'", zshFileAction(cmd.FilePattern)))
		}
		if len(specs) == 0 {
			continue
		}

		fmt.Fprintf(&b, "        %s)\n", cmd.Name)
		b.WriteString("            _arguments \\\n")
		for i, spec := range specs {
			b.WriteString("                " + spec)
			if i < len(specs)-1 {
				b.WriteString(" \\")
			}
			b.WriteString("\n")
		}
		b.WriteString("            ;;\n")
	}

	b.WriteString("        esac\n")
	b.WriteString("        ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _html2img html2img\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshFlagSpec returns the _arguments spec of f.
func zshFlagSpec(f flagDef) string {
	desc := "[" + zshEscape(f.Desc) + "]"
	action := zshFlagAction(f)

	if f.Short == "" {
		return fmt.Sprintf("'--%s%s%s'", f.Long, desc, action)
	}
	return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'%s%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
}

func zshFlagAction(f flagDef) string {
	switch f.Type {
	case flagBool:
		return ""
	case flagEnum:
		values := make([]string, len(f.Values))
		for i, v := range f.Values {
			values[i] = strings.ReplaceAll(zshEscape(v), " ", `\ `)
		}
		return fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(values, " "))
	case flagFile:
		return ":file:" + zshFileAction(f.FileGlob)
	case flagDir:
		return ":directory:_files -/"
	default:
		return ":" + f.Long + ": "
	}
}

func zshFileAction(glob string) string {
	exts := globExtensions(glob)
	if len(exts) == 0 {
		return "_files"
	}
	return fmt.Sprintf(`_files -g "*.(%s)"`, strings.Join(exts, "|"))
}

// zshEscape makes s safe inside a single-quoted _arguments spec.
func zshEscape(s string) string {
	r := strings.NewReplacer(
		"'", `'\''`,
		"[", `\[`,
		"]", `\]`,
		":", `\:`,
	)
	return r.Replace(s)
}

// --- Fish ---

func generateFish(w io.Writer, cmds []commandDef) error {
	var b strings.Builder

	b.WriteString("# fish completion for html2img\n")
	b.WriteString("complete -c html2img -f\n\n")

	for _, cmd := range cmds {
		fmt.Fprintf(&b, "complete -c html2img -n '__fish_use_subcommand' -a %s -d '%s'\n", cmd.Name, fishEscape(cmd.Desc))
	}

	for _, cmd := range cmds {
		cond := fmt.Sprintf("-n '__fish_seen_subcommand_from %s'", cmd.Name)
		if len(cmd.Flags) > 0 || len(cmd.Args) > 0 || cmd.TakesFiles {
			fmt.Fprintf(&b, "\n# %s\n", cmd.Name)
		}
		for _, f := range cmd.Flags {
			b.WriteString("complete -c html2img " + cond)
			if f.Short != "" {
				b.WriteString(" -s " + f.Short)
			}
			b.WriteString(" -l " + f.Long)
			b.WriteString(fishFlagAction(f))
			fmt.Fprintf(&b, " -d '%s'\n", fishEscape(f.Desc))
		}
		switch {
		case len(cmd.Args) > 0:
			fmt.Fprintf(&b, "complete -c html2img %s -a '%s'\n", cond, strings.Join(cmd.Args, " "))
		case cmd.TakesFiles:
			fmt.Fprintf(&b, "complete -c html2img %s -a '%s'\n", cond, fishFileAction(cmd.FilePattern))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func fishFlagAction(f flagDef) string {
	switch f.Type {
	case flagBool:
		return ""
	case flagEnum:
		values := make([]string, len(f.Values))
		for i, v := range f.Values {
			if strings.Contains(v, " ") {
				v = `"` + v + `"`
			}
			values[i] = fishEscape(v)
		}
		return fmt.Sprintf(" -x -a '%s'", strings.Join(values, " "))
	case flagFile:
		return fmt.Sprintf(" -r -a '%s'", fishFileAction(f.FileGlob))
	case flagDir:
		return " -x -a '(__fish_complete_directories)'"
	default:
		return " -x"
	}
}

func fishFileAction(glob string) string {
	exts := globExtensions(glob)
	if len(exts) == 0 {
		return "(__fish_complete_path)"
	}
	parts := make([]string, len(exts))
	for i, ext := range exts {
		parts[i] = "(__fish_complete_suffix ." + ext + ")"
	}
	return strings.Join(parts, " ")
}

// fishEscape makes s safe inside a single-quoted fish string.
func fishEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s)
}

// --- PowerShell ---

func generatePowerShell(w io.Writer, cmds []commandDef) error {
	var b strings.Builder

	b.WriteString("# PowerShell completion for html2img\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName html2img -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")

	b.WriteString("    $commands = [ordered]@{\n")
	for _, cmd := range cmds {
		fmt.Fprintf(&b, "        '%s' = '%s'\n", cmd.Name, psEscape(cmd.Desc))
	}
	b.WriteString("    }\n")

	b.WriteString("    $flags = @{\n")
	for _, cmd := range cmds {
		if len(cmd.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "        '%s' = @(%s)\n", cmd.Name, psList(flagNames(cmd.Flags)))
	}
	b.WriteString("    }\n")

	b.WriteString("    $values = @{\n")
	for _, cmd := range cmds {
		for _, f := range cmd.Flags {
			if f.Type != flagEnum {
				continue
			}
			for _, form := range flagForms(f) {
				fmt.Fprintf(&b, "        '%s %s' = @(%s)\n", cmd.Name, form, psList(f.Values))
			}
		}
	}
	b.WriteString("    }\n")

	b.WriteString("    $fixedArgs = @{\n")
	for _, cmd := range cmds {
		if len(cmd.Args) == 0 {
			continue
		}
		fmt.Fprintf(&b, "        '%s' = @(%s)\n", cmd.Name, psList(cmd.Args))
	}
	b.WriteString("    }\n\n")

	b.WriteString(`    $words = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })
    if ($words.Count -eq 1 -or ($words.Count -eq 2 -and $wordToComplete -ne '')) {
        $commands.Keys | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $commands[$_])
        }
        return
    }

    $cmd = $words[1]
    $prev = if ($wordToComplete -eq '') { $words[-1] } else { $words[-2] }
    $key = "$cmd $prev"

    if ($values.ContainsKey($key)) {
        $values[$key] | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            $text = if ($_ -match '\s') { "'$_'" } else { $_ }
            [System.Management.Automation.CompletionResult]::new($text, $_, 'ParameterValue', $_)
        }
        return
    }

    if ($wordToComplete -like '-*' -and $flags.ContainsKey($cmd)) {
        $flags[$cmd] | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterName', $_)
        }
        return
    }

    if ($fixedArgs.ContainsKey($cmd) -and $words.Count -le 3) {
        $fixedArgs[$cmd] | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
        }
    }
}
`)

	_, err := io.WriteString(w, b.String())
	return err
}

// psList renders values as a PowerShell array body.
func psList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + psEscape(v) + "'"
	}
	return strings.Join(quoted, ", ")
}

// psEscape makes s safe inside a single-quoted PowerShell string.
func psEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// --- Shared ---

func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, cmd := range cmds {
		names[i] = cmd.Name
	}
	return names
}

// flagForms returns the short and long spellings of f.
func flagForms(f flagDef) []string {
	if f.Short == "" {
		return []string{"--" + f.Long}
	}
	return []string{"-" + f.Short, "--" + f.Long}
}

func flagNames(flags []flagDef) []string {
	var names []string
	for _, f := range flags {
		names = append(names, flagForms(f)...)
	}
	return names
}

// globExtensions turns "*.yaml,*.yml" into ["yaml", "yml"].
// A bare "*" matches every file and yields nil.
func globExtensions(glob string) []string {
	var exts []string
	for _, part := range strings.Split(glob, ",") {
		part = strings.TrimSpace(part)
		if part == "" || part == "*" {
			return nil
		}
		exts = append(exts, strings.TrimPrefix(part, "*."))
	}
	return exts
}
