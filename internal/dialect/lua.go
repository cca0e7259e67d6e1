package dialect

// Lua 返回 Lua 方言的标记集合。
// ---@ 是 EmmyLua/LuaLS 类型注解前缀，它本身以行注释标记开头，
// 因此分类器必须先判断注解再判断普通注释。
func Lua() Dialect {
	return Dialect{
		Name:            "lua",
		Extensions:      []string{".lua"},
		LineComment:     "--",
		BlockOpen:       "--[[",
		BlockClose:      "]]",
		AnnotationSigil: "---@",
	}
}
