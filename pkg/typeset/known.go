package typeset

// Well-known descriptors for the Discord command domain. The hierarchy is
// small: members are users, users and roles are mentionable, and everything
// descends from the universal object type.
var (
	Object      = NewInterface(ObjectName)
	AnyFunction = NewInterface(FunctionName, WithSupers(Object))

	String      = NewInterface("string", WithSupers(Object))
	Int         = NewInterface("int", WithSupers(Object))
	Float       = NewInterface("float", WithSupers(Object))
	Bool        = NewInterface("bool", WithSupers(Object))
	Duration    = NewInterface("duration", WithSupers(Object))
	Snowflake   = NewInterface("snowflake", WithSupers(Object))
	Mentionable = NewInterface("mentionable", WithSupers(Object))
	User        = NewInterface("user", WithSupers(Mentionable, Object))
	Member      = NewInterface("member", WithSupers(User))
	Channel     = NewInterface("channel", WithSupers(Object))
	Role        = NewInterface("role", WithSupers(Mentionable, Object))
	Attachment  = NewInterface("attachment", WithSupers(Object))
)

// Known maps descriptor names to descriptors, for metadata tables that refer
// to parameter types by name.
var Known = map[string]*Descriptor{
	Object.Name():      Object,
	AnyFunction.Name(): AnyFunction,
	String.Name():      String,
	Int.Name():         Int,
	Float.Name():       Float,
	Bool.Name():        Bool,
	Duration.Name():    Duration,
	Snowflake.Name():   Snowflake,
	Mentionable.Name(): Mentionable,
	User.Name():        User,
	Member.Name():      Member,
	Channel.Name():     Channel,
	Role.Name():        Role,
	Attachment.Name():  Attachment,
}
