package syntax

// Kind identifies the Java construct a node stands for. Grammar types the
// engine never reasons about map to KindOther; anonymous tokens map to KindToken.
type Kind uint8

const (
	KindOther Kind = iota
	KindToken
	KindProgram
	KindPackage
	KindImport
	KindClass
	KindRecord
	KindInterface
	KindEnum
	KindClassBody
	KindField
	KindMethod
	KindConstructor
	KindConstructorBody
	KindFormalParameters
	KindFormalParameter
	KindSpreadParameter
	KindInferredParameters
	KindBlock
	KindSwitchGroup
	KindLocalVariable
	KindDeclarator
	KindExpressionStatement
	KindReturn
	KindIf
	KindFor
	KindForEach
	KindTry
	KindTryWithResources
	KindResourceSpec
	KindResource
	KindCatch
	KindCatchParameter
	KindFinally
	KindLambda
	KindMethodCall
	KindArguments
	KindBinary
	KindParenthesized
	KindStringLiteral
	KindAssignment
	KindUpdate
	KindIdentifier
	KindFieldAccess
	KindObjectCreation
	KindModifiers
	KindInstanceOf
	KindTypeIdentifier
	KindScopedType
	KindGenericType
	KindComment
)

var kinds = map[string]Kind{
	"program":                         KindProgram,
	"package_declaration":             KindPackage,
	"import_declaration":              KindImport,
	"class_declaration":               KindClass,
	"record_declaration":              KindRecord,
	"interface_declaration":           KindInterface,
	"enum_declaration":                KindEnum,
	"class_body":                      KindClassBody,
	"enum_body":                       KindClassBody,
	"interface_body":                  KindClassBody,
	"field_declaration":               KindField,
	"method_declaration":              KindMethod,
	"constructor_declaration":         KindConstructor,
	"compact_constructor_declaration": KindConstructor,
	"constructor_body":                KindConstructorBody,
	"formal_parameters":               KindFormalParameters,
	"formal_parameter":                KindFormalParameter,
	"spread_parameter":                KindSpreadParameter,
	"inferred_parameters":             KindInferredParameters,
	"block":                           KindBlock,
	"switch_block_statement_group":    KindSwitchGroup,
	"local_variable_declaration":      KindLocalVariable,
	"variable_declarator":             KindDeclarator,
	"expression_statement":            KindExpressionStatement,
	"return_statement":                KindReturn,
	"if_statement":                    KindIf,
	"for_statement":                   KindFor,
	"enhanced_for_statement":          KindForEach,
	"try_statement":                   KindTry,
	"try_with_resources_statement":    KindTryWithResources,
	"resource_specification":          KindResourceSpec,
	"resource":                        KindResource,
	"catch_clause":                    KindCatch,
	"catch_formal_parameter":          KindCatchParameter,
	"finally_clause":                  KindFinally,
	"lambda_expression":               KindLambda,
	"method_invocation":               KindMethodCall,
	"argument_list":                   KindArguments,
	"binary_expression":               KindBinary,
	"parenthesized_expression":        KindParenthesized,
	"string_literal":                  KindStringLiteral,
	"text_block":                      KindStringLiteral,
	"assignment_expression":           KindAssignment,
	"update_expression":               KindUpdate,
	"identifier":                      KindIdentifier,
	"field_access":                    KindFieldAccess,
	"object_creation_expression":      KindObjectCreation,
	"modifiers":                       KindModifiers,
	"instanceof_expression":           KindInstanceOf,
	"type_identifier":                 KindTypeIdentifier,
	"scoped_type_identifier":          KindScopedType,
	"generic_type":                    KindGenericType,
	"line_comment":                    KindComment,
	"block_comment":                   KindComment,
	"comment":                         KindComment,
}

// atomic grammar types are kept as single leaves even when the grammar
// exposes inner tokens (string fragments, escape sequences).
var atomic = map[string]bool{
	"string_literal":    true,
	"text_block":        true,
	"character_literal": true,
	"line_comment":      true,
	"block_comment":     true,
	"comment":           true,
}

// KindOf maps a grammar type to its Kind.
func KindOf(grammarType string, named bool) Kind {
	if !named {
		return KindToken
	}
	if kind, ok := kinds[grammarType]; ok {
		return kind
	}
	return KindOther
}

// IsTypeDeclaration reports whether kind declares a class-like type.
func (k Kind) IsTypeDeclaration() bool {
	switch k {
	case KindClass, KindRecord, KindInterface, KindEnum:
		return true
	}
	return false
}

// IsCallable reports whether kind declares a method, constructor or lambda.
func (k Kind) IsCallable() bool {
	switch k {
	case KindMethod, KindConstructor, KindLambda:
		return true
	}
	return false
}
