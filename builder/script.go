/*
 * Copyright 2024 The Prodrule Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package builder

import (
	"github.com/dop251/goja"

	"prodrule/engine"
	"prodrule/types"
)

// ScriptEngine runs a rule's condition/consequence as JavaScript instead
// of compiled Go, for rules authored or changed at runtime. The script
// must define a "condition(tuple)" function returning a boolean and a
// "consequence(tuple)" function performing side effects; either may be
// omitted (a missing condition always matches, a missing consequence is a
// no-op). Side effects reach the engine through host functions bound into
// the script's global scope: insert, modify, retract, affirm, veto, and
// event.
type ScriptEngine struct {
	vm *goja.Runtime
}

// NewScriptEngine compiles script into a fresh goja VM and binds the host
// functions a consequence needs to affect the fact space.
func NewScriptEngine(script string) (*ScriptEngine, error) {
	vm := goja.New()
	if _, err := vm.RunString(script); err != nil {
		return nil, err
	}
	e := &ScriptEngine{vm: vm}
	e.bindHostFunctions()
	return e, nil
}

// bindHostFunctions exposes EvaluationContext operations to the script by
// reaching the ambient context the engine package publishes during Fire
// (see engine.Current), the same way GojaJsEngine exposes global/metadata
// values into its VM.
func (e *ScriptEngine) bindHostFunctions() {
	_ = e.vm.Set("insert", func(fact interface{}) {
		if ctx, ok := engine.Current(); ok {
			_ = ctx.Insert(fact)
		}
	})
	_ = e.vm.Set("modify", func(fact interface{}) {
		if ctx, ok := engine.Current(); ok {
			_ = ctx.Modify(fact)
		}
	})
	_ = e.vm.Set("retract", func(fact interface{}) {
		if ctx, ok := engine.Current(); ok {
			_ = ctx.Retract(fact)
		}
	})
	_ = e.vm.Set("affirm", func(n int) {
		if ctx, ok := engine.Current(); ok {
			ctx.Affirm(n)
		}
	})
	_ = e.vm.Set("veto", func(n int) {
		if ctx, ok := engine.Current(); ok {
			ctx.Veto(n)
		}
	})
	_ = e.vm.Set("event", func(category, group, message string) {
		if ctx, ok := engine.Current(); ok {
			_ = ctx.Event(types.Category(category), group, message)
		}
	})
}

func (e *ScriptEngine) toArgs(tuple types.Tuple) []goja.Value {
	args := make([]goja.Value, len(tuple))
	for i, fact := range tuple {
		args[i] = e.vm.ToValue(fact)
	}
	return args
}

// Evaluate calls the script's condition function, if defined. A script
// with no condition function always matches.
func (e *ScriptEngine) Evaluate(tuple types.Tuple) bool {
	fn, ok := goja.AssertFunction(e.vm.Get("condition"))
	if !ok {
		return true
	}
	res, err := fn(goja.Undefined(), e.toArgs(tuple)...)
	if err != nil {
		return false
	}
	matched, _ := res.Export().(bool)
	return matched
}

// Fire calls the script's consequence function, if defined.
func (e *ScriptEngine) Fire(tuple types.Tuple) error {
	fn, ok := goja.AssertFunction(e.vm.Get("consequence"))
	if !ok {
		return nil
	}
	_, err := fn(goja.Undefined(), e.toArgs(tuple)...)
	return err
}

// Script attaches scriptSource as this rule's condition/consequence,
// compiled once at Build time. It supersedes any earlier When/Then call.
func (b *Builder) Script(scriptSource string) *Builder {
	se, err := NewScriptEngine(scriptSource)
	if err != nil {
		b.buildErr = err
		return b
	}
	b.evaluate = se.Evaluate
	b.fire = se.Fire
	return b
}
