package vm

import "fmt"

// dispatchCommand implements COMMAND argc. It pops the callee name and
// then argc values in call order. User-defined commands are checked
// first, so a program's own CommandDefinition can shadow a built-in name.
// It returns the instruction pointer to resume at (the entry point of a
// user command, or -1 to keep the loop's default of falling through to
// the next instruction).
func (in *Interpreter) dispatchCommand(argc, ip, fallthroughIP int) (int, error) {
	nameVal, ok := in.stack.Pop()
	if !ok {
		return -1, in.emptyStackErr(ip)
	}
	name, ok := nameVal.(string)
	if !ok {
		return -1, CreateRuntimeError(TypeError, in.line, ip, "command name must be a string")
	}

	args := make([]int, argc)
	for i := 0; i < argc; i++ {
		v, ok := in.stack.Pop()
		if !ok {
			return -1, in.emptyStackErr(ip)
		}
		n, ok := v.(int)
		if !ok {
			return -1, CreateRuntimeError(TypeError, in.line, ip, fmt.Sprintf("argument %d to %s must be an integer", i, name))
		}
		args[i] = n
	}

	if user, ok := in.commands[name]; ok {
		if len(user.Formals) != argc {
			return -1, CreateRuntimeError(ArityMismatch, in.line, ip, fmt.Sprintf("%s takes %d arguments, got %d", name, len(user.Formals), argc))
		}
		callee := NewEnvironment()
		for i, formal := range user.Formals {
			callee.Set(formal, args[i])
		}
		in.frames = append(in.frames, Frame{ReturnIP: fallthroughIP, Env: in.env})
		in.env = callee
		return user.Entry, nil
	}

	b, ok := builtins[name]
	if !ok {
		return -1, CreateRuntimeError(UndefinedCommand, in.line, ip, fmt.Sprintf("undefined command %q", name))
	}
	if b.arity != argc {
		return -1, CreateRuntimeError(ArityMismatch, in.line, ip, fmt.Sprintf("%s takes %d arguments, got %d", name, b.arity, argc))
	}
	in.canvasMu.Lock()
	err := b.run(in, args)
	in.canvasMu.Unlock()
	if err != nil {
		return -1, err
	}
	in.stack.Push(0)
	return -1, nil
}

// defineCommand implements DEFINE_COMMAND argc, registering a
// user-defined command from the values the compiler arranged to already
// be in definition order on the stack.
func (in *Interpreter) defineCommand(argc, ip int) error {
	entryVal, ok := in.stack.Pop()
	if !ok {
		return in.emptyStackErr(ip)
	}
	entry, ok := entryVal.(int)
	if !ok {
		return CreateRuntimeError(TypeError, in.line, ip, "command entry point must resolve to an integer")
	}

	nameVal, ok := in.stack.Pop()
	if !ok {
		return in.emptyStackErr(ip)
	}
	name, ok := nameVal.(string)
	if !ok {
		return CreateRuntimeError(TypeError, in.line, ip, "command name must be a string")
	}

	formals := make([]string, argc)
	for i := 0; i < argc; i++ {
		v, ok := in.stack.Pop()
		if !ok {
			return in.emptyStackErr(ip)
		}
		s, ok := v.(string)
		if !ok {
			return CreateRuntimeError(TypeError, in.line, ip, "command formal name must be a string")
		}
		formals[i] = s
	}

	in.commands[name] = &UserCommand{Name: name, Formals: formals, Entry: entry}
	return nil
}

// doReturn implements RETURN: pop the return value, restore the caller's
// frame, and push the return value onto the now-restored caller's stack.
func (in *Interpreter) doReturn(ip int) (int, error) {
	v, ok := in.stack.Pop()
	if !ok {
		return 0, in.emptyStackErr(ip)
	}
	if len(in.frames) == 0 {
		return 0, CreateRuntimeError(FrameUnderflow, in.line, ip, "RETURN with no active call frame")
	}
	top := in.frames[len(in.frames)-1]
	in.frames = in.frames[:len(in.frames)-1]
	in.env = top.Env
	in.stack.Push(v)
	return top.ReturnIP, nil
}
