package compiler

// htmlTags is the platform-reserved HTML5 element set: anything not
// listed here (and not in svgTags) is assumed to be a user component
// when deciding static-ness (spec §4.11). Component-name validation in
// pkg/bloom uses its own table (reserved.go), not this one.
var htmlTags = buildTagSet(
	"html,body,base,head,link,meta,style,title," +
		"address,article,aside,footer,header,h1,h2,h3,h4,h5,h6,hgroup,nav,section," +
		"div,dd,dl,dt,figcaption,figure,picture,hr,img,li,main,ol,p,pre,ul," +
		"a,b,abbr,bdi,bdo,br,cite,code,data,dfn,em,i,kbd,mark,q,rp,rt,rtc,ruby," +
		"s,samp,small,span,strong,sub,sup,time,u,var,wbr,area,audio,map,track,video," +
		"embed,object,param,source,canvas,script,noscript,del,ins," +
		"caption,col,colgroup,table,thead,tbody,td,th,tr," +
		"button,datalist,fieldset,form,input,label,legend,meter,optgroup,option," +
		"output,progress,select,textarea," +
		"details,dialog,menu,menuitem,summary," +
		"content,element,shadow,template,blockquote,iframe",
)

// svgTags lists SVG element names: also platform-reserved, never
// components.
var svgTags = buildTagSet(
	"svg,animate,circle,clippath,cursor,defs,desc,ellipse,filter,font-face," +
		"foreignobject,g,glyph,image,line,marker,mask,missing-glyph,path," +
		"pattern,polygon,polyline,rect,switch,symbol,text,textpath,tspan,use,view",
)

func buildTagSet(csv string) map[string]bool {
	set := map[string]bool{}
	start := 0
	for i := 0; i <= len(csv); i++ {
		if i == len(csv) || csv[i] == ',' {
			if i > start {
				set[csv[start:i]] = true
			}
			start = i + 1
		}
	}
	return set
}
